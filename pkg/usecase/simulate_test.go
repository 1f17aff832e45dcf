package usecase_test

import (
	"context"
	"testing"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/civicworks/mdi/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestSimulationUseCase(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultEngineConfig()
	uc := usecase.NewSimulation(cfg, usecase.WithSimulationClock(testClock))

	t.Run("Projection starts at the configured clock", func(t *testing.T) {
		result, err := uc.Simulate(ctx, model.SimulationInput{
			BaseCost:    50000,
			ReportDate:  testNow,
			AssetType:   "road",
			Severity:    types.SeverityMedium,
			HorizonDays: 30,
		})
		gt.NoError(t, err)
		gt.A(t, result.Points).Length(31)
		gt.Equal(t, 0, result.Points[0].DayOffset)

		// Day 0 is the report date itself, well inside the SLA window
		gt.Equal(t, 0, result.Points[0].DelayDays)
		gt.V(t, result.SLABreachDate).NotNil()
	})

	t.Run("Invalid input surfaces", func(t *testing.T) {
		_, err := uc.Simulate(ctx, model.SimulationInput{
			BaseCost:    -1,
			ReportDate:  testNow,
			AssetType:   "road",
			Severity:    types.SeverityMedium,
			HorizonDays: 30,
		})
		gt.Error(t, err)
	})
}
