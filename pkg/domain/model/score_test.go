package model_test

import (
	"math"
	"testing"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestMDIScore(t *testing.T) {
	t.Run("No debt scores 100", func(t *testing.T) {
		gt.Equal(t, 100.0, model.MDIScore(0, 50000))
	})

	t.Run("Zero base cost scores 100", func(t *testing.T) {
		gt.Equal(t, 100.0, model.MDIScore(0, 0))
		gt.Equal(t, 100.0, model.MDIScore(1000, 0))
	})

	t.Run("Debt exceeding base clamps to zero", func(t *testing.T) {
		gt.Equal(t, 0.0, model.MDIScore(200000, 50000))
	})

	t.Run("Proportional in between", func(t *testing.T) {
		score := model.MDIScore(20000, 150000)
		gt.True(t, math.Abs(score-86.666) < 0.01)
	})
}

func TestCategoryForScore(t *testing.T) {
	cases := []struct {
		score    float64
		category model.ScoreCategory
	}{
		{100, model.CategoryExcellent},
		{90, model.CategoryExcellent},
		{89.9, model.CategoryGood},
		{70, model.CategoryGood},
		{50, model.CategoryFair},
		{30, model.CategoryPoor},
		{29.9, model.CategoryCritical},
		{0, model.CategoryCritical},
	}
	for _, c := range cases {
		gt.Equal(t, c.category, model.CategoryForScore(c.score))
	}
}

func TestAggregateAssetDebt(t *testing.T) {
	newAsset := func(t *testing.T, code string) *model.Asset {
		t.Helper()
		asset, err := model.NewAsset(code, "Asset "+code, "road", 50000)
		gt.NoError(t, err)
		return asset
	}

	t.Run("No issues scores 100", func(t *testing.T) {
		asset := newAsset(t, "RD-001")
		agg := model.AggregateAssetDebt(asset, nil)
		gt.Equal(t, 100.0, agg.MDIScore)
		gt.Equal(t, model.CategoryExcellent, agg.Category)
		gt.Equal(t, 0, agg.OpenIssues)
	})

	t.Run("Totals sum over issues", func(t *testing.T) {
		asset := newAsset(t, "RD-002")
		debts := []*model.IssueDebt{
			{IssueID: types.NewIssueID(), AssetID: asset.ID, Severity: types.SeverityMedium,
				BaseCost: 50000, CurrentCost: 70000, Debt: 20000, Multiplier: 1.4,
				DelayDays: 20, IsOverdue: true},
			{IssueID: types.NewIssueID(), AssetID: asset.ID, Severity: types.SeverityCritical,
				BaseCost: 30000, CurrentCost: 30000, Debt: 0, Multiplier: 1},
		}
		agg := model.AggregateAssetDebt(asset, debts)
		gt.Equal(t, 80000.0, agg.TotalBaseCost)
		gt.Equal(t, 100000.0, agg.TotalCurrentCost)
		gt.Equal(t, 20000.0, agg.TotalDebt)
		gt.Equal(t, 2, agg.OpenIssues)
		gt.Equal(t, 1, agg.OverdueIssues)
		gt.Equal(t, 1, agg.CriticalIssues)
		gt.Equal(t, 20, agg.MaxDelayDays)
		gt.Equal(t, 20.0, agg.AvgDelayDays)
		gt.True(t, math.Abs(agg.MDIScore-75) < 0.001)
	})

	t.Run("Resolved issues excluded from open counts", func(t *testing.T) {
		asset := newAsset(t, "RD-003")
		debts := []*model.IssueDebt{
			{IssueID: types.NewIssueID(), AssetID: asset.ID, Severity: types.SeverityCritical,
				BaseCost: 50000, CurrentCost: 60000, Debt: 10000, Multiplier: 1.2,
				DelayDays: 10, IsOverdue: true, Resolved: true},
		}
		agg := model.AggregateAssetDebt(asset, debts)
		gt.Equal(t, 0, agg.OpenIssues)
		gt.Equal(t, 0, agg.CriticalIssues)
		gt.Equal(t, 10000.0, agg.TotalDebt)
	})
}

func TestAggregateWardScore(t *testing.T) {
	newWard := func(t *testing.T) *model.Ward {
		t.Helper()
		ward, err := model.NewWard("W001", "Downtown Central")
		gt.NoError(t, err)
		return ward
	}

	t.Run("Cost-weighted, not average of child scores", func(t *testing.T) {
		ward := newWard(t)
		assets := []*model.AssetDebt{
			{AssetID: types.NewAssetID(), TotalBaseCost: 100000, TotalCurrentCost: 120000,
				TotalDebt: 20000, MDIScore: 80, Category: model.CategoryGood,
				OpenIssues: 2, OverdueIssues: 1, AvgDelayDays: 15, MaxDelayDays: 15},
			{AssetID: types.NewAssetID(), TotalBaseCost: 50000, TotalCurrentCost: 50000,
				TotalDebt: 0, MDIScore: 100, Category: model.CategoryExcellent},
		}
		agg := model.AggregateWardScore(ward, assets)
		// 100 x (1 - 20000/150000), not the simple average of 80 and 100
		gt.True(t, math.Abs(agg.MDIScore-86.666) < 0.01)
		gt.Equal(t, model.CategoryGood, agg.Category)
		gt.Equal(t, 2, agg.TotalAssets)
		gt.Equal(t, 1, agg.AssetsWithIssues)
		gt.Equal(t, 1, agg.AssetsOverdue)
		gt.Equal(t, 1, agg.CategoryCounts[model.CategoryGood])
		gt.Equal(t, 1, agg.CategoryCounts[model.CategoryExcellent])
	})

	t.Run("Empty ward scores 100", func(t *testing.T) {
		ward := newWard(t)
		agg := model.AggregateWardScore(ward, nil)
		gt.Equal(t, 100.0, agg.MDIScore)
		gt.Equal(t, model.CategoryExcellent, agg.Category)
	})
}

func TestRankWards(t *testing.T) {
	t.Run("Orders by score descending", func(t *testing.T) {
		wards := []*model.WardScore{
			{WardCode: "W001", MDIScore: 70},
			{WardCode: "W002", MDIScore: 95},
			{WardCode: "W003", MDIScore: 40},
		}
		model.RankWards(wards)
		gt.Equal(t, "W002", wards[0].WardCode)
		gt.Equal(t, 1, wards[0].Rank)
		gt.Equal(t, "W001", wards[1].WardCode)
		gt.Equal(t, 2, wards[1].Rank)
		gt.Equal(t, "W003", wards[2].WardCode)
		gt.Equal(t, 3, wards[2].Rank)
	})

	t.Run("Ties broken by ward code", func(t *testing.T) {
		wards := []*model.WardScore{
			{WardCode: "W009", MDIScore: 80},
			{WardCode: "W002", MDIScore: 80},
		}
		model.RankWards(wards)
		gt.Equal(t, "W002", wards[0].WardCode)
		gt.Equal(t, "W009", wards[1].WardCode)
	})

	t.Run("Order-independent result", func(t *testing.T) {
		a := []*model.WardScore{
			{WardCode: "W001", MDIScore: 55},
			{WardCode: "W002", MDIScore: 85},
			{WardCode: "W003", MDIScore: 85},
		}
		b := []*model.WardScore{
			{WardCode: "W003", MDIScore: 85},
			{WardCode: "W001", MDIScore: 55},
			{WardCode: "W002", MDIScore: 85},
		}
		model.RankWards(a)
		model.RankWards(b)
		for i := range a {
			gt.Equal(t, a[i].WardCode, b[i].WardCode)
			gt.Equal(t, a[i].Rank, b[i].Rank)
		}
	})
}

func TestAggregateCityScore(t *testing.T) {
	t.Run("Sums wards and unassigned assets", func(t *testing.T) {
		wards := []*model.WardScore{
			{WardCode: "W001", TotalBaseCost: 150000, TotalCurrentCost: 170000,
				TotalDebt: 20000, MDIScore: 86.7, Category: model.CategoryGood,
				TotalAssets: 2, OpenIssues: 3, OverdueIssues: 1, MaxDelayDays: 15},
			{WardCode: "W002", TotalBaseCost: 50000, TotalCurrentCost: 50000,
				TotalDebt: 0, MDIScore: 100, Category: model.CategoryExcellent,
				TotalAssets: 1},
		}
		model.RankWards(wards)
		unassigned := []*model.AssetDebt{
			{TotalBaseCost: 10000, TotalCurrentCost: 12000, TotalDebt: 2000,
				OpenIssues: 1, OverdueIssues: 1, MaxDelayDays: 30},
		}

		agg := model.AggregateCityScore(wards, unassigned)
		gt.Equal(t, 210000.0, agg.TotalBaseCost)
		gt.Equal(t, 22000.0, agg.TotalDebt)
		gt.Equal(t, 2, agg.TotalWards)
		gt.Equal(t, 4, agg.TotalAssets)
		gt.Equal(t, 4, agg.OpenIssues)
		gt.Equal(t, 2, agg.OverdueIssues)
		gt.Equal(t, 30, agg.MaxDelayDays)
		gt.Equal(t, 1, agg.CategoryCounts[model.CategoryGood])
		gt.Equal(t, 1, agg.CategoryCounts[model.CategoryExcellent])

		gt.A(t, agg.TopWards).Length(2)
		gt.Equal(t, 1, agg.TopWards[0].Rank)
		gt.Equal(t, 100.0, agg.TopWards[0].MDIScore)
	})

	t.Run("Top and bottom listings follow rank", func(t *testing.T) {
		var wards []*model.WardScore
		codes := []string{"W001", "W002", "W003", "W004", "W005", "W006", "W007"}
		for i, code := range codes {
			wards = append(wards, &model.WardScore{
				WardCode: code,
				MDIScore: float64(100 - i*10),
			})
		}
		model.RankWards(wards)

		agg := model.AggregateCityScore(wards, nil)
		gt.A(t, agg.TopWards).Length(5)
		gt.A(t, agg.BottomWards).Length(5)
		gt.Equal(t, 1, agg.TopWards[0].Rank)
		gt.Equal(t, 7, agg.BottomWards[0].Rank)
	})

	t.Run("Empty city scores 100", func(t *testing.T) {
		agg := model.AggregateCityScore(nil, nil)
		gt.Equal(t, 100.0, agg.MDIScore)
		gt.Equal(t, model.CategoryExcellent, agg.Category)
	})
}
