package a3c

// RolloutStep is one recorded environment transition together with the
// policy bookkeeping needed to train on it later.
type RolloutStep struct {
	Obs        *EncodedObservation
	BaseAction int
	ArgSamples map[string][]int
	Reward     float64
	NextObs    *EncodedObservation
	Done       bool
	Value      float64
}

// Rollout accumulates steps within an episode. After a mid-episode training
// pass the oldest half is discarded rather than the whole buffer, so the
// next pass still sees some overlap with already-trained experience.
type Rollout struct {
	steps []*RolloutStep
}

// NewRollout creates a buffer sized for the usual training cadence.
func NewRollout(capacity int) *Rollout {
	return &Rollout{steps: make([]*RolloutStep, 0, capacity)}
}

// Append records a step.
func (r *Rollout) Append(step *RolloutStep) {
	r.steps = append(r.steps, step)
}

// TruncateToRecent drops the oldest half of the buffer, keeping the most
// recent len-len/2 steps in order.
func (r *Rollout) TruncateToRecent() {
	keep := r.steps[len(r.steps)/2:]
	r.steps = append(r.steps[:0], keep...)
}

// Len reports the number of buffered steps.
func (r *Rollout) Len() int { return len(r.steps) }

// Steps returns the buffered steps in insertion order. The slice is shared;
// callers must not retain it past the next Append or Clear.
func (r *Rollout) Steps() []*RolloutStep { return r.steps }

// Rewards copies out the per-step rewards in order.
func (r *Rollout) Rewards() []float64 {
	out := make([]float64, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.Reward
	}
	return out
}

// Values copies out the per-step value estimates in order.
func (r *Rollout) Values() []float64 {
	out := make([]float64, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.Value
	}
	return out
}

// Clear empties the buffer without releasing its backing storage.
func (r *Rollout) Clear() {
	r.steps = r.steps[:0]
}
