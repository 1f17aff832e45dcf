package model_test

import (
	"testing"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestSnapshotKey(t *testing.T) {
	key := model.SnapshotKey(types.EntityTypeWard, "ward-1", types.Period("2026-05-01"))
	gt.Equal(t, "ward:ward-1:2026-05-01", key)

	snap := &model.Snapshot{
		EntityType: types.EntityTypeWard,
		EntityID:   "ward-1",
		Period:     types.Period("2026-05-01"),
	}
	gt.Equal(t, key, snap.Key())
}

func TestSnapshotValidate(t *testing.T) {
	valid := func() *model.Snapshot {
		return &model.Snapshot{
			ID:         types.NewSnapshotID(),
			EntityType: types.EntityTypeAsset,
			EntityID:   "asset-1",
			Period:     types.Period("2026-05-01"),
		}
	}

	t.Run("Valid snapshot", func(t *testing.T) {
		gt.NoError(t, valid().Validate())
	})

	t.Run("Unknown entity type", func(t *testing.T) {
		s := valid()
		s.EntityType = "district"
		gt.Error(t, s.Validate())
	})

	t.Run("Missing entity ID", func(t *testing.T) {
		s := valid()
		s.EntityID = ""
		gt.Error(t, s.Validate())
	})

	t.Run("Malformed period", func(t *testing.T) {
		s := valid()
		s.Period = "May 2026"
		gt.Error(t, s.Validate())
	})
}

func TestNewWardSnapshot(t *testing.T) {
	agg := &model.WardScore{
		WardID:         types.NewWardID(),
		WardCode:       "W001",
		TotalBaseCost:  150000,
		TotalDebt:      20000,
		MDIScore:       86.7,
		Category:       model.CategoryGood,
		Rank:           2,
		OpenIssues:     3,
		CategoryCounts: map[model.ScoreCategory]int{model.CategoryGood: 1, model.CategoryExcellent: 1},
	}

	snap := model.NewWardSnapshot(types.Period("2026-05-01"), agg)
	gt.Equal(t, types.EntityTypeWard, snap.EntityType)
	gt.Equal(t, agg.WardID.String(), snap.EntityID)
	gt.Equal(t, 2, snap.Rank)
	gt.Equal(t, 1, snap.CategoryCounts["Good"])
	gt.Equal(t, 1, snap.CategoryCounts["Excellent"])
	gt.NoError(t, snap.Validate())
}

func TestNewCitySnapshot(t *testing.T) {
	agg := &model.CityScore{
		TotalBaseCost:  210000,
		TotalDebt:      22000,
		MDIScore:       89.5,
		Category:       model.CategoryGood,
		CategoryCounts: map[model.ScoreCategory]int{model.CategoryGood: 2},
	}

	snap := model.NewCitySnapshot(types.Period("2026-05-01"), agg)
	gt.Equal(t, types.EntityTypeCity, snap.EntityType)
	gt.Equal(t, types.CityEntityID, snap.EntityID)
	gt.NoError(t, snap.Validate())
}
