package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicworks/mdi/pkg/cli/config"
	controller "github.com/civicworks/mdi/pkg/controller/http"
	"github.com/civicworks/mdi/pkg/repository"
	"github.com/civicworks/mdi/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		firestoreCfg config.Firestore
		engineCfg    config.Engine
	)

	flags := joinFlags(
		serverCfg.Flags(),
		firestoreCfg.Flags(),
		engineCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Get logger from root command metadata
			logger := ctxlog.From(ctx)

			logger.Info("Starting mdi server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("firestore", firestoreCfg),
				slog.Any("engine", engineCfg),
			)

			// Create repository using config
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
				logger.Info("Sample data loaded")
			}

			// Create use cases
			debtUC := usecase.NewDebt(repo, cfg)
			scoreUC := usecase.NewScore(repo, cfg)
			simUC := usecase.NewSimulation(cfg)
			explainUC := usecase.NewExplain(repo, debtUC, scoreUC)
			snapshotUC := usecase.NewSnapshot(repo, cfg,
				usecase.WithWorkers(int(engineCfg.SnapshotWorkers)),
			)

			// Create HTTP server
			server, err := controller.NewServer(
				ctx,
				serverCfg.Addr,
				debtUC,
				scoreUC,
				simUC,
				explainUC,
				snapshotUC,
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start snapshot scheduler
			schedulerCtx, stopScheduler := context.WithCancel(ctx)
			defer stopScheduler()
			if engineCfg.SnapshotInterval > 0 {
				snapshotUC.Start(schedulerCtx, engineCfg.SnapshotInterval)
			} else {
				logger.Info("Snapshot scheduler disabled")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			stopScheduler()

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
