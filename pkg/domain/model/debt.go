package model

import (
	"math"
	"time"

	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DecayInput holds the parameters of one cost decay computation
type DecayInput struct {
	BaseCost           float64
	DelayDays          int
	DecayRate          float64
	SeverityMultiplier float64
	MaxMultiplier      float64
}

// CostResult is the outcome of one cost decay computation
type CostResult struct {
	BaseCost    float64
	CurrentCost float64
	Debt        float64
	Multiplier  float64 // CurrentCost / BaseCost
}

// ComputeCost converts an issue's delay into an escalated repair cost
// using daily compound growth:
//
//	decay_cost = base_cost x (1 + decay_rate) ^ delay_days
//
// The severity multiplier scales the growth portion (not the full
// cost), and the cap is applied to the severity-scaled growth. Capping
// the decay term alone would let a high severity multiplier push the
// result past the configured ceiling, so the order here matters.
func ComputeCost(in DecayInput) (*CostResult, error) {
	if in.BaseCost <= 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "base cost must be positive",
			goerr.V("baseCost", in.BaseCost))
	}
	if in.DelayDays < 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "delay days must not be negative",
			goerr.V("delayDays", in.DelayDays))
	}
	if in.DecayRate <= 0 || in.DecayRate >= 1 {
		return nil, goerr.Wrap(ErrInvalidInput, "decay rate must be in (0, 1)",
			goerr.V("decayRate", in.DecayRate))
	}
	if in.SeverityMultiplier < 1 {
		return nil, goerr.Wrap(ErrInvalidInput, "severity multiplier must be at least 1",
			goerr.V("severityMultiplier", in.SeverityMultiplier))
	}
	if in.MaxMultiplier <= 1 {
		return nil, goerr.Wrap(ErrInvalidInput, "max multiplier must be greater than 1",
			goerr.V("maxMultiplier", in.MaxMultiplier))
	}

	if in.DelayDays == 0 {
		return &CostResult{
			BaseCost:    in.BaseCost,
			CurrentCost: in.BaseCost,
			Debt:        0,
			Multiplier:  1,
		}, nil
	}

	rawGrowth := math.Pow(1+in.DecayRate, float64(in.DelayDays)) - 1
	effectiveGrowth := rawGrowth * in.SeverityMultiplier
	cappedGrowth := math.Min(effectiveGrowth, in.MaxMultiplier-1)

	multiplier := 1 + cappedGrowth
	currentCost := in.BaseCost * multiplier

	return &CostResult{
		BaseCost:    in.BaseCost,
		CurrentCost: currentCost,
		Debt:        currentCost - in.BaseCost,
		Multiplier:  multiplier,
	}, nil
}

// IssueDebt is the derived per-issue debt record. It is recomputed
// from Issue state and the current date, never stored as primary state
// except inside a Snapshot.
type IssueDebt struct {
	IssueID         types.IssueID
	AssetID         types.AssetID
	Severity        types.SeverityID
	BaseCost        float64
	CurrentCost     float64
	Debt            float64
	Multiplier      float64
	DelayDays       int
	ExpectedFixDate time.Time
	IsOverdue       bool
	Resolved        bool // Debt frozen at the resolved date
}

// CalculateIssueDebt computes the current debt of one issue as of the
// given date. Resolved issues freeze the clock at their resolved date
// so historical snapshots stay stable after resolution.
func CalculateIssueDebt(cfg *EngineConfig, issue *Issue, asset *Asset, today time.Time) (*IssueDebt, error) {
	if issue == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "issue is nil")
	}
	if asset == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "asset is nil")
	}
	if issue.AssetID != asset.ID {
		return nil, goerr.Wrap(ErrInvalidInput, "issue does not belong to asset",
			goerr.V("issueID", issue.ID),
			goerr.V("issueAssetID", issue.AssetID),
			goerr.V("assetID", asset.ID))
	}

	sev := cfg.FindSeverity(issue.Severity)
	if sev == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown severity",
			goerr.V("issueID", issue.ID),
			goerr.V("severity", issue.Severity))
	}

	slaDays, err := asset.EffectiveSLADays(cfg)
	if err != nil {
		return nil, err
	}

	asOf := today
	if issue.IsResolved() && issue.ResolvedDate != nil {
		asOf = *issue.ResolvedDate
	}

	expectedFix := issue.ReportDate.AddDate(0, 0, slaDays)
	delayDays := daysBetween(expectedFix, asOf)

	cost, err := ComputeCost(DecayInput{
		BaseCost:           issue.BaseCost(asset),
		DelayDays:          delayDays,
		DecayRate:          cfg.DecayRate,
		SeverityMultiplier: sev.Multiplier,
		MaxMultiplier:      cfg.MaxMultiplier,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute issue cost",
			goerr.V("issueID", issue.ID))
	}

	return &IssueDebt{
		IssueID:         issue.ID,
		AssetID:         issue.AssetID,
		Severity:        issue.Severity,
		BaseCost:        cost.BaseCost,
		CurrentCost:     cost.CurrentCost,
		Debt:            cost.Debt,
		Multiplier:      cost.Multiplier,
		DelayDays:       delayDays,
		ExpectedFixDate: expectedFix,
		IsOverdue:       delayDays > 0,
		Resolved:        issue.IsResolved(),
	}, nil
}

// daysBetween returns the number of whole calendar days from a to b,
// clamped at zero. Times are compared at day granularity in UTC.
func daysBetween(a, b time.Time) int {
	au := truncateToDay(a)
	bu := truncateToDay(b)
	if !bu.After(au) {
		return 0
	}
	return int(bu.Sub(au).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
