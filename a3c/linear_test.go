package a3c

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallDescriptor keeps spatial heads tiny so network tests stay fast.
func smallDescriptor(t *testing.T) *ActionSpaceDescriptor {
	t.Helper()
	sp := DefaultSpatialConfig()
	sp.ScreenSize = 8
	sp.MinimapSize = 8
	desc, err := NewActionSpaceDescriptor(FactionTerran, sp)
	require.NoError(t, err)
	return desc
}

func encodedObs(t *testing.T, desc *ActionSpaceDescriptor) *EncodedObservation {
	t.Helper()
	cfg := DefaultEncoderConfig()
	enc := NewObservationEncoder(desc, cfg)
	state := NewAgentState(desc, cfg)
	obs, err := enc.Encode(emptyRaw(desc.Spatial()), state)
	require.NoError(t, err)
	return obs
}

func zeroNetwork(t *testing.T, desc *ActionSpaceDescriptor) *LinearPolicyValue {
	t.Helper()
	enc := DefaultEncoderConfig()
	weights := make([]float64, LinearParameterCount(desc, enc))
	net, err := NewLinearPolicyValue(desc, enc, ParameterSnapshot{Weights: weights})
	require.NoError(t, err)
	return net
}

func TestLinearParameterCount_MatchesInitialVector(t *testing.T) {
	desc := smallDescriptor(t)
	enc := DefaultEncoderConfig()
	rng := rand.New(rand.NewSource(1))
	initial := InitialLinearParameters(desc, enc, rng)
	assert.Equal(t, LinearParameterCount(desc, enc), len(initial))
}

func TestLinearPolicyValue_RejectsWrongSnapshotSize(t *testing.T) {
	desc := smallDescriptor(t)
	_, err := NewLinearPolicyValue(desc, DefaultEncoderConfig(), ParameterSnapshot{Weights: []float64{1}})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLinearForward_DistributionsNormalized(t *testing.T) {
	desc := smallDescriptor(t)
	enc := DefaultEncoderConfig()
	rng := rand.New(rand.NewSource(2))
	net, err := NewLinearPolicyValue(desc, enc, ParameterSnapshot{
		Weights: InitialLinearParameters(desc, enc, rng),
	})
	require.NoError(t, err)

	out, err := net.Forward(encodedObs(t, desc))
	require.NoError(t, err)

	require.Len(t, out.Base, desc.ActionCount())
	sum := 0.0
	for _, p := range out.Base {
		require.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	for _, arg := range desc.ArgTypes() {
		dists := out.Args[arg.Name]
		require.Len(t, dists, len(arg.Dims))
		for dim, dist := range dists {
			require.Len(t, dist, desc.ArgDimSize(arg, dim))
			dimSum := 0.0
			for _, p := range dist {
				dimSum += p
			}
			assert.InDelta(t, 1.0, dimSum, 1e-9, "argument %s dim %d", arg.Name, dim)
		}
	}
	assert.False(t, math.IsNaN(out.Value))
}

// sentinelBatch builds a one-step batch where no argument head was used.
func sentinelBatch(t *testing.T, desc *ActionSpaceDescriptor, obs *EncodedObservation, advantage float64) *TrainingBatch {
	t.Helper()
	samples := make(map[string][]int)
	for _, arg := range desc.ArgTypes() {
		dims := make([]int, len(arg.Dims))
		for i := range dims {
			dims[i] = ArgSampleUnused
		}
		samples[arg.Name] = dims
	}
	return &TrainingBatch{
		Steps:      []*RolloutStep{{Obs: obs, BaseAction: 0, ArgSamples: samples}},
		Returns:    []float64{1},
		Advantages: []float64{advantage},
	}
}

func TestLinearGradients_SentinelHeadsGetNoGradientAtUniform(t *testing.T) {
	// At zero weights every head is uniform, so the entropy gradient
	// vanishes; a sentineled head then contributes nothing at all.
	desc := smallDescriptor(t)
	enc := DefaultEncoderConfig()
	net := zeroNetwork(t, desc)

	grads, summary, err := net.Gradients(sentinelBatch(t, desc, encodedObs(t, desc), 10))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Steps)

	heads, featDim, total := buildLinearHeads(desc, enc)
	require.Len(t, grads, total)

	stride := featDim + 1
	for _, h := range heads[1 : len(heads)-1] {
		for j, v := range grads[h.offset : h.offset+h.rows*stride] {
			if math.Abs(v) > 1e-12 {
				t.Fatalf("argument head %s entry %d has gradient %v", h.name, j, v)
			}
		}
	}

	// The base head was used and the advantage is nonzero, so it must carry
	// gradient mass.
	base := heads[0]
	var baseMass float64
	for _, v := range grads[base.offset : base.offset+base.rows*stride] {
		baseMass += math.Abs(v)
	}
	assert.Greater(t, baseMass, 0.0)
}

func TestLinearGradients_ValueHeadFollowsTarget(t *testing.T) {
	desc := smallDescriptor(t)
	enc := DefaultEncoderConfig()
	net := zeroNetwork(t, desc)
	obs := encodedObs(t, desc)

	batch := sentinelBatch(t, desc, obs, 0)
	batch.Returns = []float64{2} // v = 0 at zero weights, so diff = -2

	grads, summary, err := net.Gradients(batch)
	require.NoError(t, err)

	heads, featDim, _ := buildLinearHeads(desc, enc)
	valueHead := heads[len(heads)-1]
	bias := grads[valueHead.offset+featDim]
	// d(0.5*valueLoss)/d(bias) = 0.5*(v-target) = -1.
	assert.InDelta(t, -1.0, bias, 1e-9)
	assert.InDelta(t, 2.0, summary.ValueLoss, 1e-9) // 0.5*diff^2 with diff = -2
}

func TestLinearGradients_RejectsMismatchedBatch(t *testing.T) {
	desc := smallDescriptor(t)
	net := zeroNetwork(t, desc)
	obs := encodedObs(t, desc)

	batch := sentinelBatch(t, desc, obs, 1)
	batch.Advantages = []float64{1, 2}
	_, _, err := net.Gradients(batch)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
