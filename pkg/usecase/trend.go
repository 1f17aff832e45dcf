package usecase

import (
	"context"
	"time"

	"github.com/civicworks/mdi/pkg/domain/interfaces"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
)

// Trend reference windows for the live read paths and the explanation
// generator
const (
	trendLookbackDays     = 7
	trendLookbackLongDays = 30
)

// pastScore returns the entity's MDI score from the snapshot daysAgo
// days back, or nil when none exists for that period. A repository
// failure other than not-found degrades the trend to unknown rather
// than failing the read; it is logged so operators still see it.
func pastScore(ctx context.Context, repo interfaces.Repository, entityType types.EntityType, entityID string, now time.Time, daysAgo int) *float64 {
	period := types.PeriodOf(now.AddDate(0, 0, -daysAgo))
	snap, err := repo.GetSnapshot(ctx, entityType, entityID, period)
	if err != nil {
		if !model.IsNotFound(err) {
			ctxlog.From(ctx).Warn("Failed to load trend reference snapshot",
				"entityType", entityType,
				"entityID", entityID,
				"period", period,
				"error", err,
			)
		}
		return nil
	}
	score := snap.MDIScore
	return &score
}

// scoreChange returns current minus the snapshot score daysAgo days
// back, or nil when no reference snapshot exists
func scoreChange(ctx context.Context, repo interfaces.Repository, entityType types.EntityType, entityID string, now time.Time, current float64, daysAgo int) *float64 {
	prev := pastScore(ctx, repo, entityType, entityID, now, daysAgo)
	if prev == nil {
		return nil
	}
	delta := current - *prev
	return &delta
}
