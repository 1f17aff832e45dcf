package usecase

import (
	"context"
	"time"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
)

// Debt defines the current (live) debt computation operations
type Debt interface {
	ComputeAssetDebt(ctx context.Context, assetID types.AssetID) (*model.AssetDebt, error)
	GetIssueDebt(ctx context.Context, issueID types.IssueID) (*model.IssueDebt, error)
}

// Score defines aggregation and history operations
type Score interface {
	ComputeWardScore(ctx context.Context, wardID types.WardID) (*model.WardScore, error)
	ComputeCityScore(ctx context.Context) (*model.CityScore, error)
	GetHistory(ctx context.Context, entityType types.EntityType, entityID string, days int) ([]*model.Snapshot, error)
}

// Simulation defines the stateless cost projection operation
type Simulation interface {
	Simulate(ctx context.Context, in model.SimulationInput) (*model.SimulationResult, error)
}

// Explain defines the explanation generation operation
type Explain interface {
	Explain(ctx context.Context, entityType types.EntityType, entityID string) (*model.Explanation, error)
}

// Snapshot defines the scheduled recomputation operations
type Snapshot interface {
	Run(ctx context.Context, period types.Period) error
	Start(ctx context.Context, interval time.Duration)
}
