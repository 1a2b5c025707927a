package a3c

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Stats aggregates training-wide counters shared by every worker. All fields
// are updated lock-free; float values are stored as IEEE bits and swapped
// with compare-and-set loops.
type Stats struct {
	TotalSteps          atomic.Int64 // environment steps across all workers
	TotalEpisodes       atomic.Int64 // episodes finished across all workers
	GlobalEpisodes      atomic.Int64 // episodes counted by the designated worker
	TrainingPushes      atomic.Int64 // gradient pushes applied to the store
	DegenerateFallbacks atomic.Int64 // action maskings that zeroed every probability

	maxScoreBits   atomic.Uint64
	runningAvgBits atomic.Uint64
	haveAvg        atomic.Bool
}

// runningAvgWeight matches an exponential average over roughly the last
// hundred episodes.
const runningAvgWeight = 2.0 / 101.0

// NewStats returns a zeroed counter set.
func NewStats() *Stats {
	s := &Stats{}
	s.maxScoreBits.Store(math.Float64bits(math.Inf(-1)))
	return s
}

// RecordEpisode folds a finished episode's score into the maximum and the
// running average.
func (s *Stats) RecordEpisode(score float64) {
	s.TotalEpisodes.Add(1)
	for {
		old := s.maxScoreBits.Load()
		if score <= math.Float64frombits(old) {
			break
		}
		if s.maxScoreBits.CompareAndSwap(old, math.Float64bits(score)) {
			break
		}
	}
	// Seed the average before publishing haveAvg so a concurrent recorder
	// never folds its score into an unwritten zero.
	if !s.haveAvg.Load() {
		s.runningAvgBits.Store(math.Float64bits(score))
		if s.haveAvg.CompareAndSwap(false, true) {
			return
		}
	}
	for {
		old := s.runningAvgBits.Load()
		avg := math.Float64frombits(old)
		next := avg + runningAvgWeight*(score-avg)
		if s.runningAvgBits.CompareAndSwap(old, math.Float64bits(next)) {
			break
		}
	}
}

// MaxScore reports the best episode score seen so far, or negative infinity
// before any episode finishes.
func (s *Stats) MaxScore() float64 {
	return math.Float64frombits(s.maxScoreBits.Load())
}

// RunningAverage reports the exponentially weighted episode score average.
func (s *Stats) RunningAverage() float64 {
	if !s.haveAvg.Load() {
		return 0
	}
	return math.Float64frombits(s.runningAvgBits.Load())
}

// Print displays the aggregated counters at the end of a run.
func (s *Stats) Print() {
	fmt.Println("=== Training Statistics ===")
	fmt.Printf("Total Steps          : %d\n", s.TotalSteps.Load())
	fmt.Printf("Total Episodes       : %d\n", s.TotalEpisodes.Load())
	fmt.Printf("Global Episodes      : %d\n", s.GlobalEpisodes.Load())
	fmt.Printf("Training Pushes      : %d\n", s.TrainingPushes.Load())
	fmt.Printf("Degenerate Fallbacks : %d\n", s.DegenerateFallbacks.Load())
	if s.TotalEpisodes.Load() > 0 {
		fmt.Printf("Max Score            : %.3f\n", s.MaxScore())
		fmt.Printf("Running Avg Score    : %.3f\n", s.RunningAverage())
	}
}
