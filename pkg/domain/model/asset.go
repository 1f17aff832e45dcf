package model

import (
	"time"

	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Location is a simple geographic point for map display
type Location struct {
	Latitude  float64
	Longitude float64
}

// Asset represents one piece of physical infrastructure (a road
// segment, a drain, a streetlight, ...). Assets optionally belong to a
// ward; unassigned assets roll up into the city total only.
type Asset struct {
	ID             types.AssetID
	Code           string // Human-readable asset code (e.g. "RD-042")
	Name           string
	AssetType      types.AssetTypeID
	WardID         types.WardID // Empty when unassigned
	BaseRepairCost float64
	Location       Location
	SLADays        int // Override; 0 means use the asset type default
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAsset creates a new Asset with a generated ID
func NewAsset(code, name string, assetType types.AssetTypeID, baseRepairCost float64) (*Asset, error) {
	if code == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "asset code is required")
	}
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "asset name is required")
	}
	if assetType == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "asset type is required")
	}
	if baseRepairCost <= 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "base repair cost must be positive",
			goerr.V("baseRepairCost", baseRepairCost))
	}

	now := time.Now()
	return &Asset{
		ID:             types.NewAssetID(),
		Code:           code,
		Name:           name,
		AssetType:      assetType,
		BaseRepairCost: baseRepairCost,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Validate validates the asset
func (a *Asset) Validate() error {
	if a.ID == "" {
		return goerr.Wrap(ErrInvalidInput, "asset ID is required")
	}
	if a.Code == "" {
		return goerr.Wrap(ErrInvalidInput, "asset code is required")
	}
	if a.AssetType == "" {
		return goerr.Wrap(ErrInvalidInput, "asset type is required")
	}
	if a.BaseRepairCost <= 0 {
		return goerr.Wrap(ErrInvalidInput, "base repair cost must be positive",
			goerr.V("assetID", a.ID),
			goerr.V("baseRepairCost", a.BaseRepairCost))
	}
	if a.SLADays < 0 {
		return goerr.Wrap(ErrInvalidInput, "SLA days override must not be negative",
			goerr.V("assetID", a.ID),
			goerr.V("slaDays", a.SLADays))
	}
	return nil
}

// EffectiveSLADays returns the asset's SLA override when set, otherwise
// the asset type default from the engine configuration
func (a *Asset) EffectiveSLADays(cfg *EngineConfig) (int, error) {
	if a.SLADays > 0 {
		return a.SLADays, nil
	}
	at := cfg.FindAssetType(a.AssetType)
	if at == nil {
		return 0, goerr.Wrap(ErrInvalidInput, "unknown asset type",
			goerr.V("assetID", a.ID),
			goerr.V("assetType", a.AssetType))
	}
	return at.SLADays, nil
}
