package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsagent/a3c-trainer/a3c"
)

var (
	// CLI flags for the training run
	configPath       string  // Optional YAML config; flags override its fields
	mapName          string  // Scripted map to train on
	faction          string  // Faction whose action subset extends the general one
	workers          int     // Number of parallel workers
	seed             int64   // Master seed for all derived RNG streams
	logLevel         string  // Log verbosity level
	gamma            float64 // Discount rate for advantage estimation
	rolloutCutoff    int     // Buffered steps that trigger a mid-episode training pass
	maxEpisodeLength int     // Hard cap on steps per episode
	learningRate     float64 // Adam learning rate
	gradClipNorm     float64 // Global-norm bound applied to pushed gradients
	screenSize       int     // Screen resolution (square)
	minimapSize      int     // Minimap resolution (square)
	modelDir         string  // Snapshot directory
	saveIncrement    int64   // Global episodes between snapshots
	keepSnapshots    int     // Snapshots retained on disk
	summaryWindow    int     // Episodes between per-worker summary logs
	resume           bool    // Load the latest snapshot before training
)

// trainCmd runs the trainer using parameters from CLI flags and the optional
// YAML config file.
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run asynchronous training on a scripted map",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := a3c.DefaultTrainConfig()
		if configPath != "" {
			loaded, err := a3c.LoadTrainConfig(configPath)
			if err != nil {
				logrus.Fatalf("Failed to load config %s: %v", configPath, err)
			}
			cfg = *loaded
		}
		applyFlagOverrides(cmd, &cfg)

		if cfg.Map == "" {
			logrus.Fatalf("Map name not provided. Known maps: %v", a3c.KnownMaps())
		}

		coord, err := a3c.NewCoordinator(&cfg)
		if err != nil {
			logrus.Fatalf("Failed to build trainer: %v", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := coord.Run(ctx); err != nil {
			logrus.Fatalf("Training failed: %v", err)
		}
		logrus.Info("Training complete.")
	},
}

// applyFlagOverrides copies explicitly-set flags over the loaded config, so
// the precedence is defaults < YAML file < command line.
func applyFlagOverrides(cmd *cobra.Command, cfg *a3c.TrainConfig) {
	set := cmd.Flags().Changed
	if set("map") {
		cfg.Map = mapName
	}
	if set("faction") {
		cfg.Faction = faction
	}
	if set("workers") {
		cfg.Workers = workers
	}
	if set("seed") {
		cfg.Seed = seed
	}
	if set("gamma") {
		cfg.Gamma = gamma
	}
	if set("rollout-cutoff") {
		cfg.RolloutCutoff = rolloutCutoff
	}
	if set("max-episode-length") {
		cfg.MaxEpisodeLength = maxEpisodeLength
	}
	if set("learning-rate") {
		cfg.LearningRate = learningRate
	}
	if set("grad-clip-norm") {
		cfg.GradClipNorm = gradClipNorm
	}
	if set("screen-size") {
		cfg.ScreenSize = screenSize
	}
	if set("minimap-size") {
		cfg.MinimapSize = minimapSize
	}
	if set("model-dir") {
		cfg.ModelDir = modelDir
	}
	if set("save-increment") {
		cfg.SaveIncrement = saveIncrement
	}
	if set("keep") {
		cfg.KeepSnapshots = keepSnapshots
	}
	if set("summary-window") {
		cfg.SummaryWindow = summaryWindow
	}
	if set("resume") {
		cfg.Resume = resume
	}
}

// mapsCmd lists the scripted maps built into the trainer.
var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List the built-in scripted maps",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range a3c.KnownMaps() {
			fmt.Println(name)
		}
	},
}

// init sets up CLI flags and subcommands
func init() {
	defaults := a3c.DefaultTrainConfig()

	trainCmd.Flags().StringVar(&configPath, "config", "", "YAML config file; flags override its fields")
	trainCmd.Flags().StringVar(&mapName, "map", "", "Scripted map name (see the maps subcommand)")
	trainCmd.Flags().StringVar(&faction, "faction", defaults.Faction, "Faction (T, P, Z)")
	trainCmd.Flags().IntVar(&workers, "workers", defaults.Workers, "Number of parallel workers")
	trainCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Master seed for all derived RNG streams")
	trainCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Training schedule
	trainCmd.Flags().Float64Var(&gamma, "gamma", defaults.Gamma, "Discount rate for advantage estimation")
	trainCmd.Flags().IntVar(&rolloutCutoff, "rollout-cutoff", defaults.RolloutCutoff, "Buffered steps that trigger a mid-episode training pass")
	trainCmd.Flags().IntVar(&maxEpisodeLength, "max-episode-length", defaults.MaxEpisodeLength, "Hard cap on steps per episode")
	trainCmd.Flags().Float64Var(&learningRate, "learning-rate", defaults.LearningRate, "Adam learning rate")
	trainCmd.Flags().Float64Var(&gradClipNorm, "grad-clip-norm", defaults.GradClipNorm, "Global-norm bound for pushed gradients")

	// Observation shapes
	trainCmd.Flags().IntVar(&screenSize, "screen-size", defaults.ScreenSize, "Screen resolution (square)")
	trainCmd.Flags().IntVar(&minimapSize, "minimap-size", defaults.MinimapSize, "Minimap resolution (square)")

	// Snapshots
	trainCmd.Flags().StringVar(&modelDir, "model-dir", defaults.ModelDir, "Snapshot directory")
	trainCmd.Flags().Int64Var(&saveIncrement, "save-increment", defaults.SaveIncrement, "Global episodes between snapshots")
	trainCmd.Flags().IntVar(&keepSnapshots, "keep", defaults.KeepSnapshots, "Snapshots retained on disk")
	trainCmd.Flags().IntVar(&summaryWindow, "summary-window", defaults.SummaryWindow, "Episodes between per-worker summary logs")
	trainCmd.Flags().BoolVar(&resume, "resume", false, "Load the latest snapshot before training")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(mapsCmd)
}
