package model

import (
	"time"

	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// maxSimulationHorizonDays bounds the projection length. The cap in
// ComputeCost already bounds every output value, this only keeps the
// point count finite.
const maxSimulationHorizonDays = 3650

// SimulationInput describes a hypothetical issue to project
type SimulationInput struct {
	BaseCost    float64
	ReportDate  time.Time
	AssetType   types.AssetTypeID
	Severity    types.SeverityID
	HorizonDays int
}

// SimulationPoint is one day of the projected cost curve
type SimulationPoint struct {
	DayOffset   int
	Date        time.Time
	DelayDays   int
	Multiplier  float64
	CurrentCost float64
	Debt        float64
	IsOverdue   bool
}

// SimulationResult is the full projection plus its milestones. A nil
// milestone date means the milestone is not reached within the
// horizon.
type SimulationResult struct {
	Points               []SimulationPoint
	StartingCost         float64
	EndingCost           float64
	TotalDebtAccumulated float64
	PeakMultiplier       float64
	SLABreachDate        *time.Time
	DoubleCostDate       *time.Time
	TripleCostDate       *time.Time
}

// Simulate projects the cost curve of a hypothetical issue over
// horizon_days, producing horizon_days+1 points starting at startDate.
// Each point is computed from its delay_days directly rather than as a
// recurrence, so the curve is reproducible and order-independent. No
// persisted state is read.
func Simulate(cfg *EngineConfig, in SimulationInput, startDate time.Time) (*SimulationResult, error) {
	if in.BaseCost <= 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "base cost must be positive",
			goerr.V("baseCost", in.BaseCost))
	}
	if in.ReportDate.IsZero() {
		return nil, goerr.Wrap(ErrInvalidInput, "report date is required")
	}
	if in.HorizonDays < 0 || in.HorizonDays > maxSimulationHorizonDays {
		return nil, goerr.Wrap(ErrInvalidInput, "horizon days out of range",
			goerr.V("horizonDays", in.HorizonDays),
			goerr.V("max", maxSimulationHorizonDays))
	}

	at := cfg.FindAssetType(in.AssetType)
	if at == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown asset type",
			goerr.V("assetType", in.AssetType))
	}
	sev := cfg.FindSeverity(in.Severity)
	if sev == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown severity",
			goerr.V("severity", in.Severity))
	}

	expectedFix := in.ReportDate.AddDate(0, 0, at.SLADays)

	result := &SimulationResult{
		Points:         make([]SimulationPoint, 0, in.HorizonDays+1),
		StartingCost:   in.BaseCost,
		PeakMultiplier: 1,
	}

	for offset := 0; offset <= in.HorizonDays; offset++ {
		simDate := startDate.AddDate(0, 0, offset)
		delayDays := daysBetween(expectedFix, simDate)

		cost, err := ComputeCost(DecayInput{
			BaseCost:           in.BaseCost,
			DelayDays:          delayDays,
			DecayRate:          cfg.DecayRate,
			SeverityMultiplier: sev.Multiplier,
			MaxMultiplier:      cfg.MaxMultiplier,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compute simulation point",
				goerr.V("dayOffset", offset))
		}

		point := SimulationPoint{
			DayOffset:   offset,
			Date:        truncateToDay(simDate),
			DelayDays:   delayDays,
			Multiplier:  cost.Multiplier,
			CurrentCost: cost.CurrentCost,
			Debt:        cost.Debt,
			IsOverdue:   delayDays > 0,
		}
		result.Points = append(result.Points, point)

		if point.IsOverdue && result.SLABreachDate == nil {
			d := point.Date
			result.SLABreachDate = &d
		}
		if cost.CurrentCost >= 2*in.BaseCost && result.DoubleCostDate == nil {
			d := point.Date
			result.DoubleCostDate = &d
		}
		if cost.CurrentCost >= 3*in.BaseCost && result.TripleCostDate == nil {
			d := point.Date
			result.TripleCostDate = &d
		}
		if cost.Multiplier > result.PeakMultiplier {
			result.PeakMultiplier = cost.Multiplier
		}
	}

	last := result.Points[len(result.Points)-1]
	result.EndingCost = last.CurrentCost
	result.TotalDebtAccumulated = last.Debt
	return result, nil
}
