package trace

import (
	"sync"
	"testing"
)

func TestTrainingTrace_ConcurrentRecording(t *testing.T) {
	tr := NewTrainingTrace()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				tr.RecordEpisode(EpisodeRecord{Worker: worker, Episode: int64(i)})
				tr.RecordTraining(TrainingRecord{Worker: worker})
			}
		}(w)
	}
	wg.Wait()

	if got := len(tr.Episodes()); got != 100 {
		t.Errorf("episodes = %d, want 100", got)
	}
	if got := len(tr.Trainings()); got != 100 {
		t.Errorf("trainings = %d, want 100", got)
	}
}

func TestTrainingTrace_AccessorsReturnCopies(t *testing.T) {
	tr := NewTrainingTrace()
	tr.RecordCheckpoint(CheckpointRecord{GlobalEpisode: 250, Path: "a"})

	got := tr.Checkpoints()
	got[0].Path = "mutated"

	if tr.Checkpoints()[0].Path != "a" {
		t.Error("accessor returned shared backing storage")
	}
}
