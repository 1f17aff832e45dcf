package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/civicworks/mdi/pkg/cli/config"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/civicworks/mdi/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSimulate() *cli.Command {
	var (
		engineCfg   config.Engine
		baseCost    float64
		reportDate  string
		assetType   string
		severity    string
		horizonDays int64
	)

	flags := joinFlags(
		engineCfg.Flags(),
		[]cli.Flag{
			&cli.FloatFlag{
				Name:        "base-cost",
				Usage:       "Base repair cost of the hypothetical issue",
				Required:    true,
				Destination: &baseCost,
			},
			&cli.StringFlag{
				Name:        "report-date",
				Usage:       "Report date in YYYY-MM-DD form (default: today)",
				Destination: &reportDate,
			},
			&cli.StringFlag{
				Name:        "asset-type",
				Usage:       "Asset type ID (road, drain, streetlight, ...)",
				Value:       "road",
				Destination: &assetType,
			},
			&cli.StringFlag{
				Name:        "severity",
				Usage:       "Severity ID (low, medium, high, critical)",
				Value:       "medium",
				Destination: &severity,
			},
			&cli.Int64Flag{
				Name:        "horizon-days",
				Usage:       "Number of days to project",
				Value:       90,
				Destination: &horizonDays,
			},
		},
	)

	return &cli.Command{
		Name:  "simulate",
		Usage: "Project the cost curve of a hypothetical issue and print it as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := engineCfg.Configure()
			if err != nil {
				return err
			}

			report := time.Now().UTC()
			if reportDate != "" {
				parsed, err := time.Parse("2006-01-02", reportDate)
				if err != nil {
					return goerr.Wrap(model.ErrInvalidInput, "invalid report date",
						goerr.V("reportDate", reportDate))
				}
				report = parsed
			}

			simUC := usecase.NewSimulation(cfg)
			result, err := simUC.Simulate(ctx, model.SimulationInput{
				BaseCost:    baseCost,
				ReportDate:  report,
				AssetType:   types.AssetTypeID(assetType),
				Severity:    types.SeverityID(severity),
				HorizonDays: int(horizonDays),
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return goerr.Wrap(err, "failed to encode simulation result")
			}

			return nil
		},
	}
}
