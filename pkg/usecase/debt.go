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

// Clock supplies the current time; replaceable in tests
type Clock func() time.Time

// DebtUseCase implements the Debt interface
type DebtUseCase struct {
	repo interfaces.Repository
	cfg  *model.EngineConfig
	now  Clock
}

// DebtOption is a functional option for configuring DebtUseCase
type DebtOption func(*DebtUseCase)

// WithDebtClock overrides the clock used for delay computation
func WithDebtClock(clock Clock) DebtOption {
	return func(u *DebtUseCase) {
		u.now = clock
	}
}

// NewDebt creates a new DebtUseCase
func NewDebt(repo interfaces.Repository, cfg *model.EngineConfig, opts ...DebtOption) *DebtUseCase {
	uc := &DebtUseCase{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ComputeAssetDebt computes the asset's current debt aggregate from
// live issue state. Only open issues contribute; resolved issues never
// count toward current totals.
func (u *DebtUseCase) ComputeAssetDebt(ctx context.Context, assetID types.AssetID) (*model.AssetDebt, error) {
	asset, err := u.repo.GetAsset(ctx, assetID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load asset for debt computation",
			goerr.V("assetID", assetID))
	}

	today := u.now()
	agg, err := computeAssetDebt(ctx, u.repo, u.cfg, asset, today, nil)
	if err != nil {
		return nil, err
	}

	id := assetID.String()
	agg.ScoreChange7d = scoreChange(ctx, u.repo, types.EntityTypeAsset, id, today, agg.MDIScore, trendLookbackDays)
	agg.ScoreChange30d = scoreChange(ctx, u.repo, types.EntityTypeAsset, id, today, agg.MDIScore, trendLookbackLongDays)
	return agg, nil
}

// GetIssueDebt computes the current debt figures for a single issue. A
// resolved issue reports its debt frozen at the resolved date rather
// than zero, matching how snapshot runs account for it.
func (u *DebtUseCase) GetIssueDebt(ctx context.Context, issueID types.IssueID) (*model.IssueDebt, error) {
	issue, err := u.repo.GetIssue(ctx, issueID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load issue",
			goerr.V("issueID", issueID))
	}

	asset, err := u.repo.GetAsset(ctx, issue.AssetID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load asset for issue",
			goerr.V("issueID", issueID),
			goerr.V("assetID", issue.AssetID))
	}

	return model.CalculateIssueDebt(u.cfg, issue, asset, u.now())
}

// computeAssetDebt is the shared per-asset calculation used by the
// live read path, the ward/city aggregators, and the snapshot run.
// Open issues are always included. Resolved issues are included only
// when resolvedSince is set and the issue resolved at or after it (the
// lookback window policy); their debt is frozen at the resolved date.
// Issues that fail to compute (unknown severity, unknown asset type)
// are logged and excluded rather than failing the aggregate.
func computeAssetDebt(ctx context.Context, repo interfaces.Repository, cfg *model.EngineConfig, asset *model.Asset, today time.Time, resolvedSince *time.Time) (*model.AssetDebt, error) {
	issues, err := repo.ListIssuesByAsset(ctx, asset.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list issues for asset",
			goerr.V("assetID", asset.ID))
	}

	var debts []*model.IssueDebt
	for _, issue := range issues {
		if issue.IsResolved() {
			if resolvedSince == nil || issue.ResolvedDate == nil || issue.ResolvedDate.Before(*resolvedSince) {
				continue
			}
		}

		debt, err := model.CalculateIssueDebt(cfg, issue, asset, today)
		if err != nil {
			ctxlog.From(ctx).Warn("Excluding issue from aggregation",
				"issueID", issue.ID,
				"assetID", asset.ID,
				"error", err,
			)
			continue
		}
		debts = append(debts, debt)
	}

	return model.AggregateAssetDebt(asset, debts), nil
}
