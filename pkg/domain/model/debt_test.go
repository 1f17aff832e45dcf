package model_test

import (
	"math"
	"testing"
	"time"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestComputeCost(t *testing.T) {
	t.Run("Zero delay yields zero debt", func(t *testing.T) {
		result, err := model.ComputeCost(model.DecayInput{
			BaseCost:           50000,
			DelayDays:          0,
			DecayRate:          0.02,
			SeverityMultiplier: 1.5,
			MaxMultiplier:      10,
		})
		gt.NoError(t, err)
		gt.Equal(t, 50000.0, result.CurrentCost)
		gt.Equal(t, 0.0, result.Debt)
		gt.Equal(t, 1.0, result.Multiplier)
	})

	t.Run("Medium severity 30 days overdue", func(t *testing.T) {
		result, err := model.ComputeCost(model.DecayInput{
			BaseCost:           50000,
			DelayDays:          30,
			DecayRate:          0.02,
			SeverityMultiplier: 1.5,
			MaxMultiplier:      10,
		})
		gt.NoError(t, err)
		// 1.02^30 = 1.81136, growth 0.81136 x 1.5 = 1.21704
		gt.True(t, math.Abs(result.CurrentCost-110852.07) < 1)
		gt.True(t, math.Abs(result.Debt-60852.07) < 1)
		gt.True(t, math.Abs(result.Multiplier-2.21704) < 0.001)
	})

	t.Run("Cap bounds severity-scaled growth", func(t *testing.T) {
		result, err := model.ComputeCost(model.DecayInput{
			BaseCost:           10000,
			DelayDays:          365,
			DecayRate:          0.02,
			SeverityMultiplier: 3.0,
			MaxMultiplier:      10,
		})
		gt.NoError(t, err)
		gt.Equal(t, 10.0, result.Multiplier)
		gt.Equal(t, 100000.0, result.CurrentCost)
	})

	t.Run("Cost is non-decreasing in delay", func(t *testing.T) {
		prev := 0.0
		for delay := 0; delay <= 400; delay += 10 {
			result, err := model.ComputeCost(model.DecayInput{
				BaseCost:           20000,
				DelayDays:          delay,
				DecayRate:          0.02,
				SeverityMultiplier: 2.0,
				MaxMultiplier:      10,
			})
			gt.NoError(t, err)
			gt.True(t, result.CurrentCost >= prev)
			prev = result.CurrentCost
		}
	})

	t.Run("Low severity leaves growth unscaled", func(t *testing.T) {
		result, err := model.ComputeCost(model.DecayInput{
			BaseCost:           10000,
			DelayDays:          10,
			DecayRate:          0.02,
			SeverityMultiplier: 1.0,
			MaxMultiplier:      10,
		})
		gt.NoError(t, err)
		expected := 10000 * math.Pow(1.02, 10)
		gt.True(t, math.Abs(result.CurrentCost-expected) < 0.01)
	})

	t.Run("Invalid inputs rejected", func(t *testing.T) {
		cases := []model.DecayInput{
			{BaseCost: 0, DelayDays: 1, DecayRate: 0.02, SeverityMultiplier: 1, MaxMultiplier: 10},
			{BaseCost: 100, DelayDays: -1, DecayRate: 0.02, SeverityMultiplier: 1, MaxMultiplier: 10},
			{BaseCost: 100, DelayDays: 1, DecayRate: 0, SeverityMultiplier: 1, MaxMultiplier: 10},
			{BaseCost: 100, DelayDays: 1, DecayRate: 1, SeverityMultiplier: 1, MaxMultiplier: 10},
			{BaseCost: 100, DelayDays: 1, DecayRate: 0.02, SeverityMultiplier: 0.5, MaxMultiplier: 10},
			{BaseCost: 100, DelayDays: 1, DecayRate: 0.02, SeverityMultiplier: 1, MaxMultiplier: 1},
		}
		for _, in := range cases {
			_, err := model.ComputeCost(in)
			gt.Error(t, err)
		}
	})
}

func TestCalculateIssueDebt(t *testing.T) {
	cfg := model.DefaultEngineConfig()

	newRoadAsset := func(t *testing.T) *model.Asset {
		t.Helper()
		asset, err := model.NewAsset("RD-100", "Main Street", "road", 50000)
		gt.NoError(t, err)
		return asset
	}

	t.Run("Within SLA has no debt", func(t *testing.T) {
		asset := newRoadAsset(t)
		report := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		issue, err := model.NewIssue(asset.ID, "pothole", types.SeverityMedium, report)
		gt.NoError(t, err)

		// Road SLA is 14 days, day 10 is still inside the window
		debt, err := model.CalculateIssueDebt(cfg, issue, asset, report.AddDate(0, 0, 10))
		gt.NoError(t, err)
		gt.Equal(t, 0, debt.DelayDays)
		gt.Equal(t, 0.0, debt.Debt)
		gt.False(t, debt.IsOverdue)
	})

	t.Run("Overdue issue accrues debt", func(t *testing.T) {
		asset := newRoadAsset(t)
		report := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		issue, err := model.NewIssue(asset.ID, "pothole", types.SeverityMedium, report)
		gt.NoError(t, err)

		// 14 days SLA + 30 days of delay
		debt, err := model.CalculateIssueDebt(cfg, issue, asset, report.AddDate(0, 0, 44))
		gt.NoError(t, err)
		gt.Equal(t, 30, debt.DelayDays)
		gt.True(t, debt.IsOverdue)
		gt.True(t, math.Abs(debt.CurrentCost-110852.07) < 1)
	})

	t.Run("Issue cost estimate overrides asset base", func(t *testing.T) {
		asset := newRoadAsset(t)
		report := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		issue, err := model.NewIssue(asset.ID, "pothole", types.SeverityLow, report)
		gt.NoError(t, err)
		issue.EstimatedRepairCost = 12000

		debt, err := model.CalculateIssueDebt(cfg, issue, asset, report)
		gt.NoError(t, err)
		gt.Equal(t, 12000.0, debt.BaseCost)
	})

	t.Run("Resolved issue freezes the clock", func(t *testing.T) {
		asset := newRoadAsset(t)
		report := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		issue, err := model.NewIssue(asset.ID, "pothole", types.SeverityMedium, report)
		gt.NoError(t, err)

		resolvedAt := report.AddDate(0, 0, 44)
		gt.NoError(t, issue.Resolve(resolvedAt))

		// Evaluating long after resolution must match the resolved date
		late, err := model.CalculateIssueDebt(cfg, issue, asset, report.AddDate(0, 0, 200))
		gt.NoError(t, err)
		gt.Equal(t, 30, late.DelayDays)
		gt.True(t, late.Resolved)

		atResolve, err := model.CalculateIssueDebt(cfg, issue, asset, resolvedAt)
		gt.NoError(t, err)
		gt.Equal(t, atResolve.Debt, late.Debt)
	})

	t.Run("Asset SLA override wins over type default", func(t *testing.T) {
		asset := newRoadAsset(t)
		asset.SLADays = 30
		report := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		issue, err := model.NewIssue(asset.ID, "pothole", types.SeverityMedium, report)
		gt.NoError(t, err)

		debt, err := model.CalculateIssueDebt(cfg, issue, asset, report.AddDate(0, 0, 20))
		gt.NoError(t, err)
		gt.Equal(t, 0, debt.DelayDays)
	})

	t.Run("Mismatched asset rejected", func(t *testing.T) {
		asset := newRoadAsset(t)
		other := newRoadAsset(t)
		report := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		issue, err := model.NewIssue(asset.ID, "pothole", types.SeverityMedium, report)
		gt.NoError(t, err)

		_, err = model.CalculateIssueDebt(cfg, issue, other, report)
		gt.Error(t, err)
	})

	t.Run("Unknown severity rejected", func(t *testing.T) {
		asset := newRoadAsset(t)
		report := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		issue, err := model.NewIssue(asset.ID, "pothole", types.SeverityMedium, report)
		gt.NoError(t, err)
		issue.Severity = "catastrophic"

		_, err = model.CalculateIssueDebt(cfg, issue, asset, report)
		gt.Error(t, err)
	})
}
