package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/civicworks/mdi/pkg/repository"
	"github.com/civicworks/mdi/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func putAsset(t *testing.T, repo interfaces.Repository, code string, wardID types.WardID, baseCost float64) *model.Asset {
	t.Helper()
	asset, err := model.NewAsset(code, "Asset "+code, "road", baseCost)
	gt.NoError(t, err)
	asset.WardID = wardID
	gt.NoError(t, repo.PutAsset(context.Background(), asset))
	return asset
}

func putIssue(t *testing.T, repo interfaces.Repository, assetID types.AssetID, severity types.SeverityID, reportedDaysAgo int) *model.Issue {
	t.Helper()
	issue, err := model.NewIssue(assetID, "defect", severity, testNow.AddDate(0, 0, -reportedDaysAgo))
	gt.NoError(t, err)
	gt.NoError(t, repo.PutIssue(context.Background(), issue))
	return issue
}

func TestComputeWardScore(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultEngineConfig()

	t.Run("Cost-weighted over ward assets", func(t *testing.T) {
		repo := repository.NewMemory()
		ward, err := model.NewWard("W001", "Downtown Central")
		gt.NoError(t, err)
		gt.NoError(t, repo.PutWard(ctx, ward))

		heavy := putAsset(t, repo, "RD-001", ward.ID, 100000)
		putAsset(t, repo, "RD-002", ward.ID, 50000)
		// 14 days SLA + 30 days of delay, low severity on the heavy asset
		putIssue(t, repo, heavy.ID, types.SeverityLow, 44)

		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))
		score, err := uc.ComputeWardScore(ctx, ward.ID)
		gt.NoError(t, err)
		gt.Equal(t, 2, score.TotalAssets)
		gt.Equal(t, 1, score.AssetsWithIssues)
		gt.Equal(t, 1, score.OpenIssues)
		// Only the issue-bearing asset contributes cost, so the ward
		// score equals that asset's score
		expectedDebt := 100000 * (math.Pow(1.02, 30) - 1)
		gt.True(t, math.Abs(score.TotalDebt-expectedDebt) < 1)
	})

	t.Run("Unknown ward", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))
		_, err := uc.ComputeWardScore(ctx, types.NewWardID())
		gt.Error(t, err)
		gt.True(t, model.IsNotFound(err))
	})

	t.Run("Score change computed from past snapshots", func(t *testing.T) {
		repo := repository.NewMemory()
		ward, err := model.NewWard("W001", "Downtown Central")
		gt.NoError(t, err)
		gt.NoError(t, repo.PutWard(ctx, ward))
		putAsset(t, repo, "RD-001", ward.ID, 50000)

		// Current score is 100 (no issues); last week 75, no 30-day history
		gt.NoError(t, repo.PutSnapshot(ctx, &model.Snapshot{
			ID:         types.NewSnapshotID(),
			EntityType: types.EntityTypeWard,
			EntityID:   ward.ID.String(),
			Period:     types.PeriodOf(testNow.AddDate(0, 0, -7)),
			MDIScore:   75,
			CreatedAt:  time.Now(),
		}))

		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))
		score, err := uc.ComputeWardScore(ctx, ward.ID)
		gt.NoError(t, err)
		gt.V(t, score.ScoreChange7d).NotNil()
		gt.Equal(t, 25.0, *score.ScoreChange7d)
		gt.V(t, score.ScoreChange30d).Nil()
	})
}

func TestComputeCityScore(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultEngineConfig()

	t.Run("Wards ranked and unassigned assets included", func(t *testing.T) {
		repo := repository.NewMemory()
		w1, err := model.NewWard("W001", "Downtown Central")
		gt.NoError(t, err)
		gt.NoError(t, repo.PutWard(ctx, w1))
		w2, err := model.NewWard("W002", "Riverside East")
		gt.NoError(t, err)
		gt.NoError(t, repo.PutWard(ctx, w2))

		burdened := putAsset(t, repo, "RD-001", w1.ID, 50000)
		putIssue(t, repo, burdened.ID, types.SeverityHigh, 60)
		putAsset(t, repo, "RD-002", w2.ID, 50000)
		putAsset(t, repo, "SW-001", "", 12000) // No ward

		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))
		city, err := uc.ComputeCityScore(ctx)
		gt.NoError(t, err)
		gt.Equal(t, 2, city.TotalWards)
		gt.Equal(t, 3, city.TotalAssets)
		gt.Equal(t, 1, city.OpenIssues)

		// The issue-free ward ranks first
		gt.A(t, city.TopWards).Length(2)
		gt.Equal(t, "Riverside East", city.TopWards[0].WardName)
		gt.Equal(t, 1, city.TopWards[0].Rank)
	})

	t.Run("Dangling ward reference rolls into city total", func(t *testing.T) {
		repo := repository.NewMemory()
		orphan := putAsset(t, repo, "RD-009", types.NewWardID(), 50000)
		putIssue(t, repo, orphan.ID, types.SeverityLow, 44)

		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))
		city, err := uc.ComputeCityScore(ctx)
		gt.NoError(t, err)
		gt.Equal(t, 0, city.TotalWards)
		gt.Equal(t, 1, city.TotalAssets)
		gt.True(t, city.TotalDebt > 0)
	})

	t.Run("Score change computed from past city snapshots", func(t *testing.T) {
		repo := repository.NewMemory()
		gt.NoError(t, repo.PutSnapshot(ctx, &model.Snapshot{
			ID:         types.NewSnapshotID(),
			EntityType: types.EntityTypeCity,
			EntityID:   types.CityEntityID,
			Period:     types.PeriodOf(testNow.AddDate(0, 0, -30)),
			MDIScore:   90,
			CreatedAt:  time.Now(),
		}))

		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))
		city, err := uc.ComputeCityScore(ctx)
		gt.NoError(t, err)
		gt.Equal(t, 100.0, city.MDIScore)
		gt.V(t, city.ScoreChange7d).Nil()
		gt.V(t, city.ScoreChange30d).NotNil()
		gt.Equal(t, 10.0, *city.ScoreChange30d)
	})
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultEngineConfig()

	t.Run("Returns snapshots inside the window ascending", func(t *testing.T) {
		repo := repository.NewMemory()
		for _, daysAgo := range []int{20, 10, 5} {
			gt.NoError(t, repo.PutSnapshot(ctx, &model.Snapshot{
				ID:         types.NewSnapshotID(),
				EntityType: types.EntityTypeCity,
				EntityID:   types.CityEntityID,
				Period:     types.PeriodOf(testNow.AddDate(0, 0, -daysAgo)),
				MDIScore:   float64(50 + daysAgo),
				CreatedAt:  time.Now(),
			}))
		}

		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))
		snaps, err := uc.GetHistory(ctx, types.EntityTypeCity, types.CityEntityID, 14)
		gt.NoError(t, err)
		gt.A(t, snaps).Length(2)
		gt.Equal(t, types.PeriodOf(testNow.AddDate(0, 0, -10)), snaps[0].Period)
		gt.Equal(t, types.PeriodOf(testNow.AddDate(0, 0, -5)), snaps[1].Period)
	})

	t.Run("Invalid inputs rejected", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewScore(repo, cfg, usecase.WithScoreClock(testClock))

		_, err := uc.GetHistory(ctx, "district", "x", 7)
		gt.Error(t, err)

		_, err = uc.GetHistory(ctx, types.EntityTypeWard, "", 7)
		gt.Error(t, err)

		_, err = uc.GetHistory(ctx, types.EntityTypeWard, "ward-1", 0)
		gt.Error(t, err)
	})
}
