// Package trace provides run-trace recording for training analysis.
// This package has no dependencies on the trainer itself; it stores pure
// data types so analysis tooling can consume traces in isolation.
package trace

// EpisodeRecord captures one finished episode on one worker.
type EpisodeRecord struct {
	Worker        int
	Episode       int64 // worker-local episode counter
	GlobalEpisode int64 // coordinator-wide counter at completion time
	Steps         int
	Score         float64
	Degenerate    int // action selections that fell back to the unmasked policy
}

// TrainingRecord captures one gradient push applied to the shared store.
type TrainingRecord struct {
	Worker       int
	Episode      int64
	StoreVersion uint64 // store version after the push
	Steps        int    // batch size in steps
	ValueLoss    float64
	PolicyLoss   float64
	Entropy      float64
	GradNorm     float64 // pre-clip global norm
	Bootstrapped bool    // false for the terminal flush of an episode
}

// CheckpointRecord captures one snapshot written to disk.
type CheckpointRecord struct {
	GlobalEpisode int64
	Path          string
	StoreVersion  uint64
}
