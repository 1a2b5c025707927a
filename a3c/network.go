package a3c

// PolicyOutput is one forward pass of the policy-value network: a probability
// distribution over base actions, one distribution per argument dimension,
// and a scalar value estimate. Distribution lengths must match the descriptor
// exactly; the codec rejects anything else.
type PolicyOutput struct {
	Base  []float64
	Args  map[string][][]float64
	Value float64
}

// TrainingBatch is the input to a gradient computation: the rollout steps and
// their advantage/return targets, index-aligned.
type TrainingBatch struct {
	Steps      []*RolloutStep
	Returns    []float64
	Advantages []float64
}

// TrainingSummary reports the loss terms of one gradient computation, for
// telemetry. Losses are per-step means; GradNorm is the pre-clip global norm.
type TrainingSummary struct {
	ValueLoss  float64
	PolicyLoss float64
	Entropy    float64
	GradNorm   float64
	Steps      int
}

// PolicyValueNetwork is the external collaborator boundary: a function from
// encoded observations to head distributions plus a value, and a gradient of
// the combined loss with respect to the flat parameter vector the network was
// built from. Implementations are pure with respect to the snapshot they
// wrap; they never mutate shared parameters.
type PolicyValueNetwork interface {
	Forward(obs *EncodedObservation) (*PolicyOutput, error)
	Gradients(batch *TrainingBatch) ([]float64, *TrainingSummary, error)
}

// NetworkFactory builds a network around a parameter snapshot. Workers call
// it after every pull.
type NetworkFactory func(snap ParameterSnapshot) (PolicyValueNetwork, error)
