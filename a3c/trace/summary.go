package trace

// TraceSummary aggregates statistics from a TrainingTrace.
type TraceSummary struct {
	TotalEpisodes   int
	TotalPushes     int
	TotalSteps      int
	MeanScore       float64
	MaxScore        float64
	MeanEntropy     float64
	MaxGradNorm     float64
	DegenerateCount int
	EpisodesByWork  map[int]int // worker ID → episodes finished
}

// Summarize computes aggregate statistics from a TrainingTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(t *TrainingTrace) *TraceSummary {
	summary := &TraceSummary{
		EpisodesByWork: make(map[int]int),
	}
	if t == nil {
		return summary
	}

	episodes := t.Episodes()
	summary.TotalEpisodes = len(episodes)
	totalScore := 0.0
	for i, e := range episodes {
		summary.EpisodesByWork[e.Worker]++
		summary.TotalSteps += e.Steps
		summary.DegenerateCount += e.Degenerate
		totalScore += e.Score
		if i == 0 || e.Score > summary.MaxScore {
			summary.MaxScore = e.Score
		}
	}
	if len(episodes) > 0 {
		summary.MeanScore = totalScore / float64(len(episodes))
	}

	trainings := t.Trainings()
	summary.TotalPushes = len(trainings)
	totalEntropy := 0.0
	for _, tr := range trainings {
		totalEntropy += tr.Entropy
		if tr.GradNorm > summary.MaxGradNorm {
			summary.MaxGradNorm = tr.GradNorm
		}
	}
	if len(trainings) > 0 {
		summary.MeanEntropy = totalEntropy / float64(len(trainings))
	}

	return summary
}
