package trace

import "sync"

// TrainingTrace collects records during a training run. All record methods
// are safe for concurrent use by multiple workers.
type TrainingTrace struct {
	mu          sync.Mutex
	episodes    []EpisodeRecord
	trainings   []TrainingRecord
	checkpoints []CheckpointRecord
}

// NewTrainingTrace creates a TrainingTrace ready for recording.
func NewTrainingTrace() *TrainingTrace {
	return &TrainingTrace{}
}

// RecordEpisode appends a finished-episode record.
func (t *TrainingTrace) RecordEpisode(record EpisodeRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.episodes = append(t.episodes, record)
}

// RecordTraining appends a gradient-push record.
func (t *TrainingTrace) RecordTraining(record TrainingRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trainings = append(t.trainings, record)
}

// RecordCheckpoint appends a snapshot record.
func (t *TrainingTrace) RecordCheckpoint(record CheckpointRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkpoints = append(t.checkpoints, record)
}

// Episodes returns a copy of the collected episode records.
func (t *TrainingTrace) Episodes() []EpisodeRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]EpisodeRecord(nil), t.episodes...)
}

// Trainings returns a copy of the collected training records.
func (t *TrainingTrace) Trainings() []TrainingRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TrainingRecord(nil), t.trainings...)
}

// Checkpoints returns a copy of the collected checkpoint records.
func (t *TrainingTrace) Checkpoints() []CheckpointRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]CheckpointRecord(nil), t.checkpoints...)
}
