package usecase

import (
	"context"
	"time"

	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ScoreUseCase implements the Score interface. It is the live read
// path: ward and city aggregates are recomputed from current issue
// state on every call, while history reads the persisted snapshot
// sequence and never re-derives past debt.
type ScoreUseCase struct {
	repo interfaces.Repository
	cfg  *model.EngineConfig
	now  Clock
}

// ScoreOption is a functional option for configuring ScoreUseCase
type ScoreOption func(*ScoreUseCase)

// WithScoreClock overrides the clock used for delay computation
func WithScoreClock(clock Clock) ScoreOption {
	return func(u *ScoreUseCase) {
		u.now = clock
	}
}

// NewScore creates a new ScoreUseCase
func NewScore(repo interfaces.Repository, cfg *model.EngineConfig, opts ...ScoreOption) *ScoreUseCase {
	uc := &ScoreUseCase{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ComputeWardScore computes a ward's cost-weighted aggregate over its
// assets. Assets that fail to compute are logged and excluded so one
// bad record degrades the result instead of failing it.
func (u *ScoreUseCase) ComputeWardScore(ctx context.Context, wardID types.WardID) (*model.WardScore, error) {
	ward, err := u.repo.GetWard(ctx, wardID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load ward for score computation",
			goerr.V("wardID", wardID))
	}

	assets, err := u.repo.ListAssetsByWard(ctx, wardID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list ward assets",
			goerr.V("wardID", wardID))
	}

	today := u.now()
	aggregates := make([]*model.AssetDebt, 0, len(assets))
	for _, asset := range assets {
		agg, err := computeAssetDebt(ctx, u.repo, u.cfg, asset, today, nil)
		if err != nil {
			ctxlog.From(ctx).Warn("Excluding asset from ward aggregation",
				"assetID", asset.ID,
				"wardID", wardID,
				"error", err,
			)
			continue
		}
		aggregates = append(aggregates, agg)
	}

	agg := model.AggregateWardScore(ward, aggregates)
	id := wardID.String()
	agg.ScoreChange7d = scoreChange(ctx, u.repo, types.EntityTypeWard, id, today, agg.MDIScore, trendLookbackDays)
	agg.ScoreChange30d = scoreChange(ctx, u.repo, types.EntityTypeWard, id, today, agg.MDIScore, trendLookbackLongDays)
	return agg, nil
}

// ComputeCityScore computes the city-wide aggregate over all wards
// plus assets not assigned to any ward, and ranks the wards.
func (u *ScoreUseCase) ComputeCityScore(ctx context.Context) (*model.CityScore, error) {
	wards, err := u.repo.ListWards(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list wards")
	}

	wardScores := make([]*model.WardScore, 0, len(wards))
	for _, ward := range wards {
		score, err := u.ComputeWardScore(ctx, ward.ID)
		if err != nil {
			ctxlog.From(ctx).Warn("Excluding ward from city aggregation",
				"wardID", ward.ID,
				"error", err,
			)
			continue
		}
		wardScores = append(wardScores, score)
	}
	model.RankWards(wardScores)

	unassigned, err := u.unassignedAssetDebts(ctx, wards)
	if err != nil {
		return nil, err
	}

	agg := model.AggregateCityScore(wardScores, unassigned)
	today := u.now()
	agg.ScoreChange7d = scoreChange(ctx, u.repo, types.EntityTypeCity, types.CityEntityID, today, agg.MDIScore, trendLookbackDays)
	agg.ScoreChange30d = scoreChange(ctx, u.repo, types.EntityTypeCity, types.CityEntityID, today, agg.MDIScore, trendLookbackLongDays)
	return agg, nil
}

// unassignedAssetDebts computes aggregates for assets with no ward.
// Assets referencing a nonexistent ward are treated as unassigned so
// the city total still covers them; the dangling reference is logged
// for operators.
func (u *ScoreUseCase) unassignedAssetDebts(ctx context.Context, wards []*model.Ward) ([]*model.AssetDebt, error) {
	assets, err := u.repo.ListAssets(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assets")
	}

	wardIDs := make(map[types.WardID]bool, len(wards))
	for _, w := range wards {
		wardIDs[w.ID] = true
	}

	today := u.now()
	var aggregates []*model.AssetDebt
	for _, asset := range assets {
		if asset.WardID != "" {
			if wardIDs[asset.WardID] {
				continue
			}
			ctxlog.From(ctx).Warn("Asset references nonexistent ward, rolled into city total only",
				"assetID", asset.ID,
				"wardID", asset.WardID,
			)
		}

		agg, err := computeAssetDebt(ctx, u.repo, u.cfg, asset, today, nil)
		if err != nil {
			ctxlog.From(ctx).Warn("Excluding unassigned asset from city aggregation",
				"assetID", asset.ID,
				"error", err,
			)
			continue
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, nil
}

// GetHistory returns the ordered past snapshots for an entity over the
// last N days, ascending by period
func (u *ScoreUseCase) GetHistory(ctx context.Context, entityType types.EntityType, entityID string, days int) ([]*model.Snapshot, error) {
	if !entityType.Validate() {
		return nil, goerr.Wrap(model.ErrInvalidInput, "unknown entity type",
			goerr.V("entityType", entityType))
	}
	if entityID == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "entity ID is required")
	}
	if days <= 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "history days must be positive",
			goerr.V("days", days))
	}

	from := types.PeriodOf(u.now().AddDate(0, 0, -days))
	snaps, err := u.repo.ListSnapshots(ctx, entityType, entityID, from)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list snapshots",
			goerr.V("entityType", entityType),
			goerr.V("entityID", entityID))
	}
	return snaps, nil
}
