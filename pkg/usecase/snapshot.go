package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRunTimeout           = 10 * time.Minute
	defaultWorkers              = 8
	defaultResolvedLookbackDays = 30
)

// SnapshotUseCase implements the Snapshot interface. It is the sole
// writer of Snapshot records: one immutable record per (entity,
// period), recomputed asset tier first, then wards, then the city, so
// each tier reads freshly computed aggregates from the one below.
type SnapshotUseCase struct {
	repo                 interfaces.Repository
	cfg                  *model.EngineConfig
	now                  Clock
	runTimeout           time.Duration
	workers              int
	resolvedLookbackDays int
}

// SnapshotOption is a functional option for configuring SnapshotUseCase
type SnapshotOption func(*SnapshotUseCase)

// WithSnapshotClock overrides the clock used for debt computation
func WithSnapshotClock(clock Clock) SnapshotOption {
	return func(u *SnapshotUseCase) {
		u.now = clock
	}
}

// WithRunTimeout sets the run-level timeout after which an incomplete
// run is abandoned
func WithRunTimeout(d time.Duration) SnapshotOption {
	return func(u *SnapshotUseCase) {
		u.runTimeout = d
	}
}

// WithWorkers sets the number of concurrent workers in the asset tier
func WithWorkers(n int) SnapshotOption {
	return func(u *SnapshotUseCase) {
		u.workers = n
	}
}

// WithResolvedLookback sets how many days after resolution an issue
// still contributes its frozen debt to snapshots
func WithResolvedLookback(days int) SnapshotOption {
	return func(u *SnapshotUseCase) {
		u.resolvedLookbackDays = days
	}
}

// NewSnapshot creates a new SnapshotUseCase
func NewSnapshot(repo interfaces.Repository, cfg *model.EngineConfig, opts ...SnapshotOption) *SnapshotUseCase {
	uc := &SnapshotUseCase{
		repo:                 repo,
		cfg:                  cfg,
		now:                  time.Now,
		runTimeout:           defaultRunTimeout,
		workers:              defaultWorkers,
		resolvedLookbackDays: defaultResolvedLookbackDays,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run recomputes and persists all snapshots for one period. All
// aggregates are computed before anything is written, so a failed or
// timed-out run commits nothing and the next trigger retries the whole
// period. Re-running an already-snapshotted period overwrites each
// (entity, period) slot rather than duplicating it.
func (u *SnapshotUseCase) Run(ctx context.Context, period types.Period) error {
	ctx, cancel := context.WithTimeout(ctx, u.runTimeout)
	defer cancel()

	logger := ctxlog.From(ctx)
	start := time.Now()

	asOf, err := period.Time()
	if err != nil {
		return goerr.Wrap(model.ErrInvalidInput, "malformed snapshot period",
			goerr.V("period", period))
	}
	// Debt is evaluated at the end of the period day.
	asOf = asOf.AddDate(0, 0, 1).Add(-time.Second)
	resolvedSince := asOf.AddDate(0, 0, -u.resolvedLookbackDays)

	wards, err := u.repo.ListWards(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list wards for snapshot run")
	}
	assets, err := u.repo.ListAssets(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list assets for snapshot run")
	}

	// Tier 1: asset aggregates, parallel across assets. Each asset is
	// independent; results land in distinct slots so only the shared
	// slice append needs a lock.
	assetAggs := make([]*model.AssetDebt, len(assets))
	var excluded int
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(u.workers)
	for i, asset := range assets {
		eg.Go(func() error {
			agg, err := computeAssetDebt(egCtx, u.repo, u.cfg, asset, asOf, &resolvedSince)
			if err != nil {
				// Reference and data errors degrade the run, they do
				// not abort it. Context errors do.
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				ctxlog.From(egCtx).Warn("Excluding asset from snapshot run",
					"assetID", asset.ID,
					"error", err,
				)
				mu.Lock()
				excluded++
				mu.Unlock()
				return nil
			}
			assetAggs[i] = agg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return goerr.Wrap(err, "snapshot asset tier failed",
			goerr.V("period", period))
	}

	// Tier 2: ward aggregates from the asset tier's output.
	wardIDs := make(map[types.WardID]bool, len(wards))
	for _, w := range wards {
		wardIDs[w.ID] = true
	}
	byWard := make(map[types.WardID][]*model.AssetDebt, len(wards))
	var unassigned []*model.AssetDebt
	for _, agg := range assetAggs {
		if agg == nil {
			continue
		}
		if agg.WardID != "" && wardIDs[agg.WardID] {
			byWard[agg.WardID] = append(byWard[agg.WardID], agg)
		} else {
			if agg.WardID != "" {
				logger.Warn("Asset references nonexistent ward, rolled into city total only",
					"assetID", agg.AssetID,
					"wardID", agg.WardID,
				)
			}
			unassigned = append(unassigned, agg)
		}
	}

	wardScores := make([]*model.WardScore, 0, len(wards))
	for _, ward := range wards {
		wardScores = append(wardScores, model.AggregateWardScore(ward, byWard[ward.ID]))
	}
	model.RankWards(wardScores)

	// Tier 3: the city aggregate from the ward tier's output.
	cityScore := model.AggregateCityScore(wardScores, unassigned)

	// Persist. Compute is done; write asset, ward, then city snapshots.
	snapshots := make([]*model.Snapshot, 0, len(assets)+len(wards)+1)
	for _, agg := range assetAggs {
		if agg == nil {
			continue
		}
		snapshots = append(snapshots, model.NewAssetSnapshot(period, agg))
	}
	for _, ws := range wardScores {
		snapshots = append(snapshots, model.NewWardSnapshot(period, ws))
	}
	snapshots = append(snapshots, model.NewCitySnapshot(period, cityScore))

	for _, snap := range snapshots {
		if err := u.repo.PutSnapshot(ctx, snap); err != nil {
			return goerr.Wrap(err, "failed to persist snapshot, run will be retried",
				goerr.V("period", period),
				goerr.V("key", snap.Key()))
		}
	}

	logger.Info("Snapshot run complete",
		"period", period,
		"assets", len(assets),
		"excludedAssets", excluded,
		"wards", len(wardScores),
		"cityScore", cityScore.MDIScore,
		"duration", time.Since(start),
	)
	return nil
}

// Start launches the recurring snapshot job: one run immediately, then
// one per interval, until the context is cancelled. A failed run is
// logged and retried at the next tick for the then-current period.
func (u *SnapshotUseCase) Start(ctx context.Context, interval time.Duration) {
	go func() {
		logger := ctxlog.From(ctx)

		runOnce := func() {
			period := types.PeriodOf(u.now())
			if err := u.Run(ctx, period); err != nil {
				logger.Error("Snapshot run failed",
					"period", period,
					"error", err,
				)
			}
		}

		runOnce()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Snapshot scheduler stopped")
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
