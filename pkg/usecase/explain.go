package usecase

import (
	"context"
	"time"

	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ExplainUseCase implements the Explain interface: a pure read-side
// transform over the current aggregate and the snapshot history.
type ExplainUseCase struct {
	repo  interfaces.Repository
	debt  *DebtUseCase
	score *ScoreUseCase
	now   Clock
}

// ExplainOption is a functional option for configuring ExplainUseCase
type ExplainOption func(*ExplainUseCase)

// WithExplainClock overrides the clock used for trend lookback
func WithExplainClock(clock Clock) ExplainOption {
	return func(u *ExplainUseCase) {
		u.now = clock
	}
}

// NewExplain creates a new ExplainUseCase
func NewExplain(repo interfaces.Repository, debt *DebtUseCase, score *ScoreUseCase, opts ...ExplainOption) *ExplainUseCase {
	uc := &ExplainUseCase{
		repo:  repo,
		debt:  debt,
		score: score,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Explain generates the causal narrative for an asset's or ward's
// current debt state, using the snapshot from the trend lookback as
// the comparison point when one exists
func (u *ExplainUseCase) Explain(ctx context.Context, entityType types.EntityType, entityID string) (*model.Explanation, error) {
	var in model.ExplanationInput

	switch entityType {
	case types.EntityTypeAsset:
		agg, err := u.debt.ComputeAssetDebt(ctx, types.AssetID(entityID))
		if err != nil {
			return nil, err
		}
		in = model.ExplanationInput{
			EntityType:       entityType,
			EntityID:         entityID,
			EntityName:       agg.AssetName,
			MDIScore:         agg.MDIScore,
			TotalBaseCost:    agg.TotalBaseCost,
			TotalCurrentCost: agg.TotalCurrentCost,
			TotalDebt:        agg.TotalDebt,
			OpenIssues:       agg.OpenIssues,
			OverdueIssues:    agg.OverdueIssues,
			MaxDelayDays:     agg.MaxDelayDays,
		}

	case types.EntityTypeWard:
		agg, err := u.score.ComputeWardScore(ctx, types.WardID(entityID))
		if err != nil {
			return nil, err
		}
		in = model.ExplanationInput{
			EntityType:       entityType,
			EntityID:         entityID,
			EntityName:       agg.WardName,
			MDIScore:         agg.MDIScore,
			TotalBaseCost:    agg.TotalBaseCost,
			TotalCurrentCost: agg.TotalCurrentCost,
			TotalDebt:        agg.TotalDebt,
			OpenIssues:       agg.OpenIssues,
			OverdueIssues:    agg.OverdueIssues,
			MaxDelayDays:     agg.MaxDelayDays,
		}

	default:
		return nil, goerr.Wrap(model.ErrInvalidInput, "explanations cover assets and wards only",
			goerr.V("entityType", entityType))
	}

	in.PreviousScore = pastScore(ctx, u.repo, entityType, entityID, u.now(), trendLookbackDays)
	return model.BuildExplanation(in), nil
}
