package model

import (
	"fmt"

	"github.com/civicworks/mdi/pkg/domain/types"
)

// TrendDirection classifies score movement against a prior snapshot
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// String returns the string representation
func (t TrendDirection) String() string {
	return string(t)
}

// trendThreshold is the score delta beyond which movement counts as a
// trend rather than noise
const trendThreshold = 5.0

// TrendFor classifies a score delta (current minus previous)
func TrendFor(delta float64) TrendDirection {
	switch {
	case delta > trendThreshold:
		return TrendImproving
	case delta < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Explanation is a human-readable causal narrative for a debt/score
// result. Deterministic given its inputs; no side effects.
type Explanation struct {
	EntityType        types.EntityType
	EntityID          string
	EntityName        string
	Headline          string
	Summary           string
	RecommendedAction string // Empty unless the score is below 50
	MDIScore          float64
	Category          ScoreCategory
	Trend             TrendDirection
	ScoreChange       *float64 // Delta vs the reference snapshot, nil without history
	TotalBaseCost     float64
	TotalCurrentCost  float64
	TotalDebt         float64
	OpenIssues        int
	OverdueIssues     int
	MaxDelayDays      int
}

// ExplanationInput carries the current aggregate figures plus the
// prior snapshot score used as the trend reference
type ExplanationInput struct {
	EntityType       types.EntityType
	EntityID         string
	EntityName       string
	MDIScore         float64
	TotalBaseCost    float64
	TotalCurrentCost float64
	TotalDebt        float64
	OpenIssues       int
	OverdueIssues    int
	MaxDelayDays     int
	PreviousScore    *float64
}

// BuildExplanation translates an aggregate result into a headline,
// summary sentence, and (for scores below 50) a recommended action.
func BuildExplanation(in ExplanationInput) *Explanation {
	category := CategoryForScore(in.MDIScore)

	trend := TrendStable
	var change *float64
	if in.PreviousScore != nil {
		delta := in.MDIScore - *in.PreviousScore
		change = &delta
		trend = TrendFor(delta)
	}

	exp := &Explanation{
		EntityType:       in.EntityType,
		EntityID:         in.EntityID,
		EntityName:       in.EntityName,
		MDIScore:         in.MDIScore,
		Category:         category,
		Trend:            trend,
		ScoreChange:      change,
		TotalBaseCost:    in.TotalBaseCost,
		TotalCurrentCost: in.TotalCurrentCost,
		TotalDebt:        in.TotalDebt,
		OpenIssues:       in.OpenIssues,
		OverdueIssues:    in.OverdueIssues,
		MaxDelayDays:     in.MaxDelayDays,
	}

	exp.Headline = buildHeadline(in.EntityName, category, trend)
	exp.Summary = buildSummary(in)
	if in.MDIScore < 50 {
		exp.RecommendedAction = buildRecommendation(in)
	}
	return exp
}

func buildHeadline(name string, category ScoreCategory, trend TrendDirection) string {
	var state string
	switch category {
	case CategoryExcellent:
		state = "is in excellent condition"
	case CategoryGood:
		state = "is well-maintained"
	case CategoryFair:
		state = "needs attention"
	case CategoryPoor:
		state = "has a significant maintenance backlog"
	default:
		state = "requires urgent intervention"
	}

	switch trend {
	case TrendImproving:
		return fmt.Sprintf("%s %s and improving", name, state)
	case TrendDeclining:
		return fmt.Sprintf("%s %s and declining", name, state)
	default:
		return fmt.Sprintf("%s %s", name, state)
	}
}

func buildSummary(in ExplanationInput) string {
	if in.OpenIssues == 0 {
		return fmt.Sprintf("%s has an MDI score of %.1f/100 with no open maintenance issues.",
			in.EntityName, in.MDIScore)
	}
	if in.TotalDebt <= 0 {
		return fmt.Sprintf("%s has an MDI score of %.1f/100 with %d open issue(s), all within their SLA window.",
			in.EntityName, in.MDIScore, in.OpenIssues)
	}
	return fmt.Sprintf(
		"%s has an MDI score of %.1f/100: delays on %d of %d open issue(s) have grown the repair cost from %.0f to %.0f, accumulating %.0f in maintenance debt (up to %d days past SLA).",
		in.EntityName, in.MDIScore, in.OverdueIssues, in.OpenIssues,
		in.TotalBaseCost, in.TotalCurrentCost, in.TotalDebt, in.MaxDelayDays)
}

func buildRecommendation(in ExplanationInput) string {
	if in.MDIScore < 30 {
		return fmt.Sprintf("Immediate repair work is required: resolving the %d overdue issue(s) now stops roughly %.0f of debt from compounding further.",
			in.OverdueIssues, in.TotalDebt)
	}
	return fmt.Sprintf("Prioritize the %d overdue issue(s); each additional day of delay compounds the %.0f already accumulated.",
		in.OverdueIssues, in.TotalDebt)
}
