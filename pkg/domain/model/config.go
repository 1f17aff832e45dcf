package model

import (
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// AssetTypeConfig describes one asset type: its SLA window and the
// default base repair cost applied when an issue has no estimate.
type AssetTypeConfig struct {
	ID             types.AssetTypeID `yaml:"id"`
	Name           string            `yaml:"name"`
	SLADays        int               `yaml:"sla_days"`
	BaseRepairCost float64           `yaml:"base_repair_cost"`
}

// Validate validates the asset type configuration
func (a *AssetTypeConfig) Validate() error {
	if a.ID == "" {
		return goerr.New("asset type ID is required")
	}
	if a.Name == "" {
		return goerr.New("asset type name is required")
	}
	if a.SLADays <= 0 {
		return goerr.New("asset type SLA days must be positive",
			goerr.V("id", a.ID),
			goerr.V("slaDays", a.SLADays))
	}
	if a.BaseRepairCost <= 0 {
		return goerr.New("asset type base repair cost must be positive",
			goerr.V("id", a.ID),
			goerr.V("baseRepairCost", a.BaseRepairCost))
	}
	return nil
}

// SeverityConfig describes one severity level and the multiplier it
// applies to compound growth.
type SeverityConfig struct {
	ID         types.SeverityID `yaml:"id"`
	Name       string           `yaml:"name"`
	Multiplier float64          `yaml:"multiplier"`
}

// Validate validates the severity configuration
func (s *SeverityConfig) Validate() error {
	if s.ID == "" {
		return goerr.New("severity ID is required")
	}
	if s.Name == "" {
		return goerr.New("severity name is required")
	}
	if s.Multiplier < 1 {
		return goerr.New("severity multiplier must be at least 1",
			goerr.V("id", s.ID),
			goerr.V("multiplier", s.Multiplier))
	}
	return nil
}

// EngineConfig is the immutable configuration injected into every debt
// calculation. It is loaded once at process start; simulations may run
// with a different hypothetical instance without affecting live reads.
type EngineConfig struct {
	DecayRate     float64           `yaml:"decay_rate"`
	MaxMultiplier float64           `yaml:"max_multiplier"`
	AssetTypes    []AssetTypeConfig `yaml:"asset_types"`
	Severities    []SeverityConfig  `yaml:"severities"`
}

// Validate validates the engine configuration
func (c *EngineConfig) Validate() error {
	if c.DecayRate <= 0 || c.DecayRate >= 1 {
		return goerr.New("decay rate must be in (0, 1)",
			goerr.V("decayRate", c.DecayRate))
	}
	if c.MaxMultiplier <= 1 {
		return goerr.New("max multiplier must be greater than 1",
			goerr.V("maxMultiplier", c.MaxMultiplier))
	}
	if len(c.AssetTypes) == 0 {
		return goerr.New("at least one asset type is required")
	}
	if len(c.Severities) == 0 {
		return goerr.New("at least one severity is required")
	}

	typeIDs := make(map[types.AssetTypeID]bool)
	for i, at := range c.AssetTypes {
		if err := at.Validate(); err != nil {
			return goerr.Wrap(err, "invalid asset type at index",
				goerr.V("index", i),
				goerr.V("id", at.ID))
		}
		if typeIDs[at.ID] {
			return goerr.New("duplicate asset type ID",
				goerr.V("id", at.ID))
		}
		typeIDs[at.ID] = true
	}

	sevIDs := make(map[types.SeverityID]bool)
	for i, sev := range c.Severities {
		if err := sev.Validate(); err != nil {
			return goerr.Wrap(err, "invalid severity at index",
				goerr.V("index", i),
				goerr.V("id", sev.ID))
		}
		if sevIDs[sev.ID] {
			return goerr.New("duplicate severity ID",
				goerr.V("id", sev.ID))
		}
		sevIDs[sev.ID] = true
	}

	return nil
}

// FindAssetType finds an asset type by its ID
func (c *EngineConfig) FindAssetType(id types.AssetTypeID) *AssetTypeConfig {
	for _, at := range c.AssetTypes {
		if at.ID == id {
			result := at
			return &result
		}
	}
	return nil
}

// FindSeverity finds a severity by its ID
func (c *EngineConfig) FindSeverity(id types.SeverityID) *SeverityConfig {
	for _, sev := range c.Severities {
		if sev.ID == id {
			result := sev
			return &result
		}
	}
	return nil
}

// DefaultEngineConfig returns the built-in engine configuration used
// when no configuration file is provided
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		DecayRate:     0.02,
		MaxMultiplier: 10,
		AssetTypes: []AssetTypeConfig{
			{ID: "road", Name: "Road", SLADays: 14, BaseRepairCost: 50000},
			{ID: "drain", Name: "Drain", SLADays: 7, BaseRepairCost: 15000},
			{ID: "streetlight", Name: "Streetlight", SLADays: 3, BaseRepairCost: 8000},
			{ID: "bridge", Name: "Bridge", SLADays: 21, BaseRepairCost: 200000},
			{ID: "sidewalk", Name: "Sidewalk", SLADays: 10, BaseRepairCost: 12000},
			{ID: "water_pipe", Name: "Water pipe", SLADays: 7, BaseRepairCost: 30000},
			{ID: "sewer", Name: "Sewer", SLADays: 7, BaseRepairCost: 40000},
			{ID: "park", Name: "Park", SLADays: 10, BaseRepairCost: 20000},
			{ID: "other", Name: "Other", SLADays: 7, BaseRepairCost: 10000},
		},
		Severities: []SeverityConfig{
			{ID: types.SeverityLow, Name: "Low", Multiplier: 1.0},
			{ID: types.SeverityMedium, Name: "Medium", Multiplier: 1.5},
			{ID: types.SeverityHigh, Name: "High", Multiplier: 2.0},
			{ID: types.SeverityCritical, Name: "Critical", Multiplier: 3.0},
		},
	}
}
