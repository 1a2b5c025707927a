package a3c

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrainConfig holds the full configuration for a training run, loadable from
// a YAML file. LoadTrainConfig unmarshals on top of DefaultTrainConfig, so
// omitted fields keep their defaults; command-line flags override individual
// fields after loading.
type TrainConfig struct {
	Map     string `yaml:"map"`
	Faction string `yaml:"faction"`
	Workers int    `yaml:"workers"`
	Seed    int64  `yaml:"seed"`

	Gamma            float64 `yaml:"gamma"`
	RolloutCutoff    int     `yaml:"rollout_cutoff"`
	MaxEpisodeLength int     `yaml:"max_episode_length"`

	LearningRate float64 `yaml:"learning_rate"`
	GradClipNorm float64 `yaml:"grad_clip_norm"`

	ScreenSize  int `yaml:"screen_size"`
	MinimapSize int `yaml:"minimap_size"`

	ModelDir      string `yaml:"model_dir"`
	SaveIncrement int64  `yaml:"save_increment"`
	KeepSnapshots int    `yaml:"keep_snapshots"`
	Resume        bool   `yaml:"resume"`

	SummaryWindow int `yaml:"summary_window"`
}

// Training constants carried by default configurations.
const (
	DefaultGamma            = 0.99
	DefaultRolloutCutoff    = 30
	DefaultMaxEpisodeLength = 300
	DefaultSaveIncrement    = int64(250)
	DefaultKeepSnapshots    = 5
	DefaultSummaryWindow    = 5
)

// DefaultTrainConfig returns the configuration used when no YAML file or
// flag overrides a field.
func DefaultTrainConfig() TrainConfig {
	sp := DefaultSpatialConfig()
	opt := DefaultOptimizerConfig()
	return TrainConfig{
		Faction:          string(FactionTerran),
		Workers:          4,
		Seed:             1,
		Gamma:            DefaultGamma,
		RolloutCutoff:    DefaultRolloutCutoff,
		MaxEpisodeLength: DefaultMaxEpisodeLength,
		LearningRate:     opt.LearningRate,
		GradClipNorm:     opt.ClipNorm,
		ScreenSize:       sp.ScreenSize,
		MinimapSize:      sp.MinimapSize,
		ModelDir:         "model",
		SaveIncrement:    DefaultSaveIncrement,
		KeepSnapshots:    DefaultKeepSnapshots,
		SummaryWindow:    DefaultSummaryWindow,
	}
}

// LoadTrainConfig reads and parses a YAML training configuration file on top
// of the defaults.
func LoadTrainConfig(path string) (*TrainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading train config: %w", err)
	}
	cfg := DefaultTrainConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing train config: %w", err)
	}
	return &cfg, nil
}

// ValidFactions is the set of recognized faction names.
var ValidFactions = map[string]bool{
	string(FactionTerran):  true,
	string(FactionProtoss): true,
	string(FactionZerg):    true,
}

// Validate checks that all names and parameter ranges in the configuration
// are usable before any worker starts.
func (c *TrainConfig) Validate() error {
	if c.Map == "" {
		return fmt.Errorf("map name is required")
	}
	if !ValidFactions[c.Faction] {
		return fmt.Errorf("unknown faction %q", c.Faction)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Gamma <= 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in (0, 1], got %f", c.Gamma)
	}
	if c.RolloutCutoff < 1 {
		return fmt.Errorf("rollout_cutoff must be at least 1, got %d", c.RolloutCutoff)
	}
	if c.MaxEpisodeLength < 1 {
		return fmt.Errorf("max_episode_length must be at least 1, got %d", c.MaxEpisodeLength)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %f", c.LearningRate)
	}
	if c.GradClipNorm <= 0 {
		return fmt.Errorf("grad_clip_norm must be positive, got %f", c.GradClipNorm)
	}
	if c.ScreenSize < 1 || c.MinimapSize < 1 {
		return fmt.Errorf("screen_size and minimap_size must be positive, got %d and %d", c.ScreenSize, c.MinimapSize)
	}
	if c.SaveIncrement < 1 {
		return fmt.Errorf("save_increment must be at least 1, got %d", c.SaveIncrement)
	}
	if c.KeepSnapshots < 1 {
		return fmt.Errorf("keep_snapshots must be at least 1, got %d", c.KeepSnapshots)
	}
	if c.SummaryWindow < 1 {
		return fmt.Errorf("summary_window must be at least 1, got %d", c.SummaryWindow)
	}
	return nil
}

// Optimizer builds the optimizer settings carried by this configuration.
func (c *TrainConfig) Optimizer() OptimizerConfig {
	opt := DefaultOptimizerConfig()
	opt.LearningRate = c.LearningRate
	opt.ClipNorm = c.GradClipNorm
	return opt
}

// SpatialLayout builds the spatial dimensions carried by this configuration.
func (c *TrainConfig) SpatialLayout() SpatialConfig {
	sp := DefaultSpatialConfig()
	sp.ScreenSize = c.ScreenSize
	sp.MinimapSize = c.MinimapSize
	return sp
}
