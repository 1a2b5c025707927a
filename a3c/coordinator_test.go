package a3c

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coordinatorConfig(t *testing.T) TrainConfig {
	t.Helper()
	cfg := DefaultTrainConfig()
	cfg.Map = "drill"
	cfg.Workers = 2
	cfg.ScreenSize = 8
	cfg.MinimapSize = 8
	cfg.ModelDir = t.TempDir()
	return cfg
}

func TestNewCoordinator_RejectsInvalidConfig(t *testing.T) {
	cfg := coordinatorConfig(t)
	cfg.Map = ""
	_, err := NewCoordinator(&cfg)
	assert.Error(t, err)
}

func TestNewCoordinator_RejectsUnknownMap(t *testing.T) {
	cfg := coordinatorConfig(t)
	cfg.Map = "atlantis"
	_, err := NewCoordinator(&cfg)
	assert.ErrorIs(t, err, ErrUnknownMap)
}

func TestCoordinator_RunTrainsAndStopsOnCancel(t *testing.T) {
	cfg := coordinatorConfig(t)
	coord, err := NewCoordinator(&cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	deadline := time.After(30 * time.Second)
	for coord.Stats().TrainingPushes.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no training push happened in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(30 * time.Second):
		t.Fatal("coordinator did not stop after cancel")
	}

	assert.Greater(t, coord.Store().Version(), uint64(0))
	assert.Greater(t, coord.Stats().TotalEpisodes.Load(), int64(0))
}

func TestCoordinator_CheckpointAndResume(t *testing.T) {
	cfg := coordinatorConfig(t)
	cfg.Workers = 1
	cfg.SaveIncrement = 1 // snapshot after every counted episode

	coord, err := NewCoordinator(&cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	deadline := time.After(30 * time.Second)
	for coord.Stats().GlobalEpisodes.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("no checkpointed episode in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	require.NoError(t, <-done)
	require.NotEmpty(t, coord.Trace().Checkpoints())

	// A fresh coordinator resumes from the latest snapshot.
	cfg.Resume = true
	resumed, err := NewCoordinator(&cfg)
	require.NoError(t, err)
	assert.Greater(t, resumed.Stats().GlobalEpisodes.Load(), int64(0))
	assert.Greater(t, resumed.Store().Version(), uint64(0))
}

func TestCoordinator_ResumeWithoutSnapshotsFails(t *testing.T) {
	cfg := coordinatorConfig(t)
	cfg.Resume = true
	_, err := NewCoordinator(&cfg)
	assert.Error(t, err)
}
