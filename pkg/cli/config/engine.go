package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/civicworks/mdi/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Engine holds debt engine configuration. The asset type and severity
// tables come from a YAML file when one is given, otherwise the
// built-in defaults are used. The decay-rate and max-multiplier flags
// override whichever table is in effect when set.
type Engine struct {
	ConfigPath       string
	DecayRate        float64
	MaxMultiplier    float64
	SnapshotInterval time.Duration
	SnapshotWorkers  int64
	Seed             bool
}

// Flags returns CLI flags for Engine configuration
func (e *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "engine-config",
			Usage:       "Path to engine configuration YAML (asset types, severities, rates)",
			Category:    "Engine",
			Sources:     cli.EnvVars("MDI_ENGINE_CONFIG"),
			Destination: &e.ConfigPath,
		},
		&cli.FloatFlag{
			Name:        "decay-rate",
			Usage:       "Daily compound decay rate, overrides configuration file when set",
			Category:    "Engine",
			Sources:     cli.EnvVars("MDI_DECAY_RATE"),
			Destination: &e.DecayRate,
		},
		&cli.FloatFlag{
			Name:        "max-multiplier",
			Usage:       "Cost growth cap as a multiple of base cost, overrides configuration file when set",
			Category:    "Engine",
			Sources:     cli.EnvVars("MDI_MAX_MULTIPLIER"),
			Destination: &e.MaxMultiplier,
		},
		&cli.DurationFlag{
			Name:        "snapshot-interval",
			Usage:       "Interval between scheduled snapshot runs (0 disables the scheduler)",
			Category:    "Engine",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("MDI_SNAPSHOT_INTERVAL"),
			Destination: &e.SnapshotInterval,
		},
		&cli.Int64Flag{
			Name:        "snapshot-workers",
			Usage:       "Number of parallel workers for the asset tier of a snapshot run",
			Category:    "Engine",
			Value:       8,
			Sources:     cli.EnvVars("MDI_SNAPSHOT_WORKERS"),
			Destination: &e.SnapshotWorkers,
		},
		&cli.BoolFlag{
			Name:        "seed",
			Usage:       "Load sample wards, assets and issues at startup",
			Category:    "Engine",
			Sources:     cli.EnvVars("MDI_SEED"),
			Destination: &e.Seed,
		},
	}
}

// Configure builds the engine configuration from the file and flag
// overrides, validating the result
func (e *Engine) Configure() (*model.EngineConfig, error) {
	cfg := model.DefaultEngineConfig()

	if e.ConfigPath != "" {
		loaded, err := LoadEngineFromFile(e.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if e.DecayRate > 0 {
		cfg.DecayRate = e.DecayRate
	}
	if e.MaxMultiplier > 0 {
		cfg.MaxMultiplier = e.MaxMultiplier
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid engine configuration")
	}

	return cfg, nil
}

// LoadEngineFromFile loads engine configuration from a YAML file.
// Fields the file omits keep their built-in defaults.
func LoadEngineFromFile(path string) (*model.EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "engine configuration file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read engine configuration file",
			goerr.V("path", path))
	}

	cfg := model.DefaultEngineConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML configuration",
			goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration",
			goerr.V("path", path))
	}

	return cfg, nil
}

// LogValue returns structured log value
func (e Engine) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("configPath", e.ConfigPath),
		slog.Float64("decayRate", e.DecayRate),
		slog.Float64("maxMultiplier", e.MaxMultiplier),
		slog.Duration("snapshotInterval", e.SnapshotInterval),
		slog.Int64("snapshotWorkers", e.SnapshotWorkers),
		slog.Bool("seed", e.Seed),
	)
}
