package trace

import "testing"

func TestSummarize_NilTrace(t *testing.T) {
	s := Summarize(nil)
	if s.TotalEpisodes != 0 || s.TotalPushes != 0 {
		t.Errorf("nil trace summary not zero: %+v", s)
	}
	if s.EpisodesByWork == nil {
		t.Error("EpisodesByWork map not initialized")
	}
}

func TestSummarize_Aggregates(t *testing.T) {
	tr := NewTrainingTrace()
	tr.RecordEpisode(EpisodeRecord{Worker: 0, Steps: 10, Score: 2, Degenerate: 1})
	tr.RecordEpisode(EpisodeRecord{Worker: 0, Steps: 20, Score: 6})
	tr.RecordEpisode(EpisodeRecord{Worker: 1, Steps: 5, Score: 4})
	tr.RecordTraining(TrainingRecord{Worker: 0, Entropy: 2, GradNorm: 3})
	tr.RecordTraining(TrainingRecord{Worker: 1, Entropy: 4, GradNorm: 1})

	s := Summarize(tr)
	if s.TotalEpisodes != 3 {
		t.Errorf("TotalEpisodes = %d, want 3", s.TotalEpisodes)
	}
	if s.TotalSteps != 35 {
		t.Errorf("TotalSteps = %d, want 35", s.TotalSteps)
	}
	if s.MeanScore != 4 {
		t.Errorf("MeanScore = %v, want 4", s.MeanScore)
	}
	if s.MaxScore != 6 {
		t.Errorf("MaxScore = %v, want 6", s.MaxScore)
	}
	if s.DegenerateCount != 1 {
		t.Errorf("DegenerateCount = %d, want 1", s.DegenerateCount)
	}
	if s.EpisodesByWork[0] != 2 || s.EpisodesByWork[1] != 1 {
		t.Errorf("EpisodesByWork = %v", s.EpisodesByWork)
	}
	if s.TotalPushes != 2 {
		t.Errorf("TotalPushes = %d, want 2", s.TotalPushes)
	}
	if s.MeanEntropy != 3 {
		t.Errorf("MeanEntropy = %v, want 3", s.MeanEntropy)
	}
	if s.MaxGradNorm != 3 {
		t.Errorf("MaxGradNorm = %v, want 3", s.MaxGradNorm)
	}
}

func TestSummarize_NegativeScores(t *testing.T) {
	tr := NewTrainingTrace()
	tr.RecordEpisode(EpisodeRecord{Score: -5})
	tr.RecordEpisode(EpisodeRecord{Score: -2})
	s := Summarize(tr)
	if s.MaxScore != -2 {
		t.Errorf("MaxScore = %v, want -2", s.MaxScore)
	}
}
