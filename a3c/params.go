package a3c

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// OptimizerConfig holds the Adam hyperparameters and the global-norm bound
// applied to every pushed gradient.
type OptimizerConfig struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	ClipNorm     float64
}

// DefaultOptimizerConfig matches the training constants the system was tuned
// with: Adam at 1e-4 and a 40.0 global-norm gradient clip.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		LearningRate: 1e-4,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		ClipNorm:     40.0,
	}
}

// ParameterSnapshot is an immutable copy of the canonical parameters at some
// version. Workers compute gradients against a snapshot that may already be
// stale by the time they push; the algorithm tolerates that staleness.
type ParameterSnapshot struct {
	Version uint64
	Weights []float64
}

// GlobalParameterStore owns the canonical trainable parameters. It is the
// only point of cross-worker interaction: Pull returns a copy, Push applies a
// clipped Adam update. Pushes are atomic with respect to each other; two
// concurrent pushes never interleave into a torn update.
type GlobalParameterStore struct {
	mu      sync.Mutex
	weights []float64
	m       []float64
	v       []float64
	step    int64
	version uint64
	cfg     OptimizerConfig
}

// NewGlobalParameterStore takes ownership of the initial parameter vector.
func NewGlobalParameterStore(initial []float64, cfg OptimizerConfig) *GlobalParameterStore {
	return &GlobalParameterStore{
		weights: append([]float64(nil), initial...),
		m:       make([]float64, len(initial)),
		v:       make([]float64, len(initial)),
		cfg:     cfg,
	}
}

// Len returns the parameter vector length.
func (g *GlobalParameterStore) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.weights)
}

// Pull returns a snapshot copy of the current parameters. Always succeeds.
func (g *GlobalParameterStore) Pull() ParameterSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ParameterSnapshot{
		Version: g.version,
		Weights: append([]float64(nil), g.weights...),
	}
}

// Push clips the gradient by the configured global norm bound and applies one
// Adam update to the canonical parameters. The gradient slice is not retained
// but may be scaled in place by the clip.
func (g *GlobalParameterStore) Push(grads []float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(grads) != len(g.weights) {
		return ErrGradientSize
	}

	if norm := floats.Norm(grads, 2); norm > g.cfg.ClipNorm && norm > 0 {
		floats.Scale(g.cfg.ClipNorm/norm, grads)
	}

	g.step++
	// Bias-corrected step size, standard Adam.
	correction := math.Sqrt(1-math.Pow(g.cfg.Beta2, float64(g.step))) /
		(1 - math.Pow(g.cfg.Beta1, float64(g.step)))
	stepSize := g.cfg.LearningRate * correction

	for i, grad := range grads {
		g.m[i] = g.cfg.Beta1*g.m[i] + (1-g.cfg.Beta1)*grad
		g.v[i] = g.cfg.Beta2*g.v[i] + (1-g.cfg.Beta2)*grad*grad
		g.weights[i] -= stepSize * g.m[i] / (math.Sqrt(g.v[i]) + g.cfg.Epsilon)
	}
	g.version++
	return nil
}

// Version returns the number of pushes applied so far.
func (g *GlobalParameterStore) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

// StoreState is a full copy of the store's trainable and optimizer state,
// suitable for checkpointing.
type StoreState struct {
	Weights      []float64
	FirstMoment  []float64
	SecondMoment []float64
	Step         int64
	Version      uint64
}

// Export copies out the full store state.
func (g *GlobalParameterStore) Export() StoreState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return StoreState{
		Weights:      append([]float64(nil), g.weights...),
		FirstMoment:  append([]float64(nil), g.m...),
		SecondMoment: append([]float64(nil), g.v...),
		Step:         g.step,
		Version:      g.version,
	}
}

// Restore replaces the store's state with a previously exported one. Moment
// vectors may be nil, in which case the optimizer restarts cold on the
// restored weights.
func (g *GlobalParameterStore) Restore(state StoreState) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(state.Weights) != len(g.weights) {
		return ErrGradientSize
	}
	copy(g.weights, state.Weights)
	if state.FirstMoment != nil {
		if len(state.FirstMoment) != len(g.m) || len(state.SecondMoment) != len(g.v) {
			return ErrGradientSize
		}
		copy(g.m, state.FirstMoment)
		copy(g.v, state.SecondMoment)
	} else {
		clearFloats(g.m)
		clearFloats(g.v)
	}
	g.step = state.Step
	g.version = state.Version
	return nil
}
