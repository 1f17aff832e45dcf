package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/civicworks/mdi/pkg/cli/config"
	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/civicworks/mdi/pkg/domain/types"
	"github.com/civicworks/mdi/pkg/repository"
	"github.com/civicworks/mdi/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSnapshot() *cli.Command {
	var (
		firestoreCfg config.Firestore
		engineCfg    config.Engine
		periodStr    string
	)

	flags := joinFlags(
		firestoreCfg.Flags(),
		engineCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "period",
				Usage:       "Snapshot period in YYYY-MM-DD form (default: today)",
				Sources:     cli.EnvVars("MDI_SNAPSHOT_PERIOD"),
				Destination: &periodStr,
			},
		},
	)

	return &cli.Command{
		Name:  "snapshot",
		Usage: "Run a single snapshot pass and exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			period := types.PeriodOf(time.Now())
			if periodStr != "" {
				parsed, err := types.ParsePeriod(periodStr)
				if err != nil {
					return goerr.Wrap(model.ErrInvalidInput, "invalid period",
						goerr.V("period", periodStr))
				}
				period = parsed
			}

			repo, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			cfg, err := engineCfg.Configure()
			if err != nil {
				return err
			}

			if engineCfg.Seed {
				if err := repository.Seed(ctx, repo, cfg); err != nil {
					return goerr.Wrap(err, "failed to seed sample data")
				}
			}

			snapshotUC := usecase.NewSnapshot(repo, cfg,
				usecase.WithWorkers(int(engineCfg.SnapshotWorkers)),
			)

			logger.Info("Running snapshot", slog.String("period", period.String()))
			if err := snapshotUC.Run(ctx, period); err != nil {
				return goerr.Wrap(err, "snapshot run failed",
					goerr.V("period", period))
			}

			logger.Info("Snapshot complete", slog.String("period", period.String()))
			return nil
		},
	}
}
