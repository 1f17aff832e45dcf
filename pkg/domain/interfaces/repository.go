package interfaces

import (
	"context"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
)

// Repository defines the interface for data persistence. The engine
// only ever writes Snapshot records; Asset/Issue/Ward writes exist for
// the administrative surface and seeding.
type Repository interface {
	// Asset operations
	PutAsset(ctx context.Context, asset *model.Asset) error
	GetAsset(ctx context.Context, id types.AssetID) (*model.Asset, error)
	ListAssets(ctx context.Context) ([]*model.Asset, error)
	ListAssetsByWard(ctx context.Context, wardID types.WardID) ([]*model.Asset, error)

	// Ward operations
	PutWard(ctx context.Context, ward *model.Ward) error
	GetWard(ctx context.Context, id types.WardID) (*model.Ward, error)
	ListWards(ctx context.Context) ([]*model.Ward, error)

	// Issue operations
	PutIssue(ctx context.Context, issue *model.Issue) error
	GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error)
	ListIssuesByAsset(ctx context.Context, assetID types.AssetID) ([]*model.Issue, error)

	// Snapshot operations. PutSnapshot upserts by (entity type, entity
	// ID, period); ListSnapshots returns ascending by period starting
	// at from.
	PutSnapshot(ctx context.Context, snapshot *model.Snapshot) error
	GetSnapshot(ctx context.Context, entityType types.EntityType, entityID string, period types.Period) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context, entityType types.EntityType, entityID string, from types.Period) ([]*model.Snapshot, error)

	// Close closes the repository connection
	Close() error
}
