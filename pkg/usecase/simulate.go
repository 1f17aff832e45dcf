package usecase

import (
	"context"
	"time"

	"github.com/civicworks/mdi/pkg/domain/model"
)

// SimulationUseCase implements the Simulation interface. Projections
// read only the engine configuration, never persisted debt, so they
// are safe to run concurrently with anything.
type SimulationUseCase struct {
	cfg *model.EngineConfig
	now Clock
}

// SimulationOption is a functional option for configuring SimulationUseCase
type SimulationOption func(*SimulationUseCase)

// WithSimulationClock overrides the projection start clock
func WithSimulationClock(clock Clock) SimulationOption {
	return func(u *SimulationUseCase) {
		u.now = clock
	}
}

// NewSimulation creates a new SimulationUseCase
func NewSimulation(cfg *model.EngineConfig, opts ...SimulationOption) *SimulationUseCase {
	uc := &SimulationUseCase{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Simulate projects the day-by-day cost curve of a hypothetical issue
func (u *SimulationUseCase) Simulate(ctx context.Context, in model.SimulationInput) (*model.SimulationResult, error) {
	return model.Simulate(u.cfg, in, u.now())
}
