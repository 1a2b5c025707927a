package a3c

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// ArgSampleUnused marks argument samples for types the chosen action does not
// declare. One-hot encoding against this value yields an all-zero target, so
// those heads contribute zero loss and zero gradient for the step.
const ArgSampleUnused = -1

// SelectedAction is the codec's output: the training-facing base index and
// per-argument samples, plus the environment-facing call.
type SelectedAction struct {
	BaseIndex int
	Spec      ActionSpec
	Call      ActionCall

	// ArgSamples maps every catalogue argument type to its per-dimension
	// samples; types unused by the chosen action hold ArgSampleUnused.
	ArgSamples map[string][]int

	// DegenerateMask is set when the availability mask zeroed the entire base
	// distribution and selection fell back to the unmasked distribution.
	DegenerateMask bool
}

// ActionCodec masks, renormalizes, and samples the factored action space.
type ActionCodec struct {
	desc *ActionSpaceDescriptor
}

// NewActionCodec builds a codec bound to one descriptor.
func NewActionCodec(desc *ActionSpaceDescriptor) *ActionCodec {
	return &ActionCodec{desc: desc}
}

// SelectAction masks out actions whose catalogue ids are not available,
// renormalizes the surviving mass, samples the base action and every argument
// dimension independently, and assembles the environment call from the chosen
// action's declared arguments only.
//
// A fully masked base distribution is tolerated: selection falls back to the
// unmasked distribution and the result carries DegenerateMask so the caller
// can count the fallback.
func (c *ActionCodec) SelectAction(out *PolicyOutput, availableIDs []int, rng *rand.Rand) (*SelectedAction, error) {
	if len(out.Base) != c.desc.ActionCount() {
		return nil, fmt.Errorf("%w: base distribution length %d, want %d", ErrShapeMismatch, len(out.Base), c.desc.ActionCount())
	}

	available := make(map[int]bool, len(availableIDs))
	for _, id := range availableIDs {
		available[id] = true
	}

	masked := append([]float64(nil), out.Base...)
	for i := range masked {
		spec, err := c.desc.Resolve(i)
		if err != nil {
			return nil, err
		}
		if !available[spec.ID] {
			masked[i] = 0
		}
	}

	degenerate := false
	mass := floats.Sum(masked)
	switch {
	case mass == 0:
		// Everything masked out. Should not happen with a well-behaved
		// environment, but must be tolerated: sample the original
		// distribution instead of silently corrupting.
		copy(masked, out.Base)
		degenerate = true
	case mass != 1:
		floats.Scale(1/mass, masked)
	}

	baseIndex := sampleCategorical(masked, rng)
	spec, err := c.desc.Resolve(baseIndex)
	if err != nil {
		return nil, err
	}

	// Sample every argument dimension independently, then keep only the
	// chosen action's declared arguments for the call.
	samples := make(map[string][]int, len(c.desc.ArgTypes()))
	for _, arg := range c.desc.ArgTypes() {
		dists, ok := out.Args[arg.Name]
		if !ok || len(dists) != len(arg.Dims) {
			return nil, fmt.Errorf("%w: argument %q has %d dimension distributions, want %d", ErrShapeMismatch, arg.Name, len(dists), len(arg.Dims))
		}
		dimSamples := make([]int, len(arg.Dims))
		for dim := range arg.Dims {
			want := c.desc.ArgDimSize(arg, dim)
			if len(dists[dim]) != want {
				return nil, fmt.Errorf("%w: argument %q dim %d has size %d, want %d", ErrShapeMismatch, arg.Name, dim, len(dists[dim]), want)
			}
			dimSamples[dim] = sampleCategorical(dists[dim], rng)
		}
		samples[arg.Name] = dimSamples
	}

	call := ActionCall{FunctionID: spec.ID}
	used := make(map[string]bool, len(spec.Args))
	for _, arg := range spec.Args {
		used[arg.Name] = true
		call.Args = append(call.Args, append([]int(nil), samples[arg.Name]...))
	}

	// Sentinel out every argument type the chosen action does not declare.
	for name, dims := range samples {
		if used[name] {
			continue
		}
		for i := range dims {
			dims[i] = ArgSampleUnused
		}
	}

	return &SelectedAction{
		BaseIndex:      baseIndex,
		Spec:           spec,
		Call:           call,
		ArgSamples:     samples,
		DegenerateMask: degenerate,
	}, nil
}

// sampleCategorical draws one index from an (approximately normalized)
// categorical distribution by inverse transform sampling.
func sampleCategorical(probs []float64, rng *rand.Rand) int {
	threshold := rng.Float64()
	var cumulative float64
	for i, p := range probs {
		cumulative += p
		if threshold <= cumulative {
			return i
		}
	}
	// Rounding left a sliver of mass unassigned; take the last index.
	return len(probs) - 1
}
