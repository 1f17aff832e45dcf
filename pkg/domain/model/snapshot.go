package model

import (
	"fmt"
	"time"

	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Snapshot is an immutable point-in-time aggregate record. One
// snapshot exists per (entity, period); re-running a period overwrites
// rather than duplicates. The scheduler is the sole writer; history
// and trend views only ever read the ordered snapshot sequence, never
// re-derive past debt from issues.
type Snapshot struct {
	ID                types.SnapshotID
	EntityType        types.EntityType
	EntityID          string
	Period            types.Period
	TotalBaseCost     float64
	TotalCurrentCost  float64
	TotalDebt         float64
	MDIScore          float64
	Category          ScoreCategory
	OpenIssueCount    int
	OverdueIssueCount int
	MaxDelayDays      int
	AvgDelayDays      float64
	Rank              int            // Ward snapshots only
	CategoryCounts    map[string]int // Ward/city snapshots: child categories
	CreatedAt         time.Time
}

// Key returns the upsert key identifying this snapshot's
// (entity, period) slot
func (s *Snapshot) Key() string {
	return SnapshotKey(s.EntityType, s.EntityID, s.Period)
}

// SnapshotKey builds the upsert key for a snapshot slot
func SnapshotKey(entityType types.EntityType, entityID string, period types.Period) string {
	return fmt.Sprintf("%s:%s:%s", entityType, entityID, period)
}

// Validate validates the snapshot
func (s *Snapshot) Validate() error {
	if !s.EntityType.Validate() {
		return goerr.Wrap(ErrInvalidInput, "unknown snapshot entity type",
			goerr.V("entityType", s.EntityType))
	}
	if s.EntityID == "" {
		return goerr.Wrap(ErrInvalidInput, "snapshot entity ID is required")
	}
	if s.Period == "" {
		return goerr.Wrap(ErrInvalidInput, "snapshot period is required")
	}
	if _, err := s.Period.Time(); err != nil {
		return goerr.Wrap(ErrInvalidInput, "malformed snapshot period",
			goerr.V("period", s.Period))
	}
	return nil
}

// NewAssetSnapshot builds the snapshot record for one asset aggregate
func NewAssetSnapshot(period types.Period, agg *AssetDebt) *Snapshot {
	return &Snapshot{
		ID:                types.NewSnapshotID(),
		EntityType:        types.EntityTypeAsset,
		EntityID:          agg.AssetID.String(),
		Period:            period,
		TotalBaseCost:     agg.TotalBaseCost,
		TotalCurrentCost:  agg.TotalCurrentCost,
		TotalDebt:         agg.TotalDebt,
		MDIScore:          agg.MDIScore,
		Category:          agg.Category,
		OpenIssueCount:    agg.OpenIssues,
		OverdueIssueCount: agg.OverdueIssues,
		MaxDelayDays:      agg.MaxDelayDays,
		AvgDelayDays:      agg.AvgDelayDays,
		CreatedAt:         time.Now(),
	}
}

// NewWardSnapshot builds the snapshot record for one ward aggregate
func NewWardSnapshot(period types.Period, agg *WardScore) *Snapshot {
	return &Snapshot{
		ID:                types.NewSnapshotID(),
		EntityType:        types.EntityTypeWard,
		EntityID:          agg.WardID.String(),
		Period:            period,
		TotalBaseCost:     agg.TotalBaseCost,
		TotalCurrentCost:  agg.TotalCurrentCost,
		TotalDebt:         agg.TotalDebt,
		MDIScore:          agg.MDIScore,
		Category:          agg.Category,
		OpenIssueCount:    agg.OpenIssues,
		OverdueIssueCount: agg.OverdueIssues,
		MaxDelayDays:      agg.MaxDelayDays,
		AvgDelayDays:      agg.AvgDelayDays,
		Rank:              agg.Rank,
		CategoryCounts:    categoryCountStrings(agg.CategoryCounts),
		CreatedAt:         time.Now(),
	}
}

// NewCitySnapshot builds the snapshot record for the city aggregate
func NewCitySnapshot(period types.Period, agg *CityScore) *Snapshot {
	return &Snapshot{
		ID:                types.NewSnapshotID(),
		EntityType:        types.EntityTypeCity,
		EntityID:          types.CityEntityID,
		Period:            period,
		TotalBaseCost:     agg.TotalBaseCost,
		TotalCurrentCost:  agg.TotalCurrentCost,
		TotalDebt:         agg.TotalDebt,
		MDIScore:          agg.MDIScore,
		Category:          agg.Category,
		OpenIssueCount:    agg.OpenIssues,
		OverdueIssueCount: agg.OverdueIssues,
		MaxDelayDays:      agg.MaxDelayDays,
		CategoryCounts:    categoryCountStrings(agg.CategoryCounts),
		CreatedAt:         time.Now(),
	}
}

// categoryCountStrings converts the typed histogram into plain string
// keys so repository encoders handle it uniformly
func categoryCountStrings(counts map[ScoreCategory]int) map[string]int {
	out := make(map[string]int, len(counts))
	for c, n := range counts {
		out[c.String()] = n
	}
	return out
}
