package a3c

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Loss constants. probFloor keeps log terms finite when a head assigns a
// probability of zero; it changes nothing for healthy distributions.
const (
	probFloor      = 1e-20
	entropyCoeff   = 0.01
	valueLossCoeff = 0.5
	policyInitStd  = 0.01
	valueInitStd   = 1.0
	baseHeadName   = "base"
	valueHeadName  = "value"
	nonArgHeadDim  = -1
)

// linearHead is one softmax (or scalar) output head over the shared feature
// vector. Weights for row r live at offset + r*(featDim+1), bias last.
type linearHead struct {
	name   string
	dim    int
	rows   int
	offset int
}

// LinearPolicyValue is the default policy-value collaborator: a linear
// featurizer (nonspatial vector plus per-channel spatial means) feeding
// independent softmax heads for the base action and every argument dimension,
// plus a scalar value head. Gradients of the combined loss
//
//	valueLossCoeff*valueLoss + policyLoss - entropyCoeff*entropy
//
// are computed analytically against the flat parameter vector.
type LinearPolicyValue struct {
	desc    *ActionSpaceDescriptor
	enc     EncoderConfig
	featDim int
	heads   []linearHead
	total   int
	weights []float64
}

// buildLinearHeads lays out the flat parameter vector: base head first, then
// one head per argument dimension in catalogue order, value head last.
func buildLinearHeads(desc *ActionSpaceDescriptor, enc EncoderConfig) (heads []linearHead, featDim, total int) {
	sp := desc.Spatial()
	featDim = enc.NonspatialSize(desc.ActionCount()) + sp.ScreenChannels + sp.MinimapChannels
	stride := featDim + 1

	add := func(name string, dim, rows int) {
		heads = append(heads, linearHead{name: name, dim: dim, rows: rows, offset: total})
		total += rows * stride
	}
	add(baseHeadName, nonArgHeadDim, desc.ActionCount())
	for _, arg := range desc.ArgTypes() {
		for dim := range arg.Dims {
			add(arg.Name, dim, desc.ArgDimSize(arg, dim))
		}
	}
	add(valueHeadName, nonArgHeadDim, 1)
	return heads, featDim, total
}

// LinearParameterCount returns the flat parameter vector length for the given
// descriptor and encoder layout.
func LinearParameterCount(desc *ActionSpaceDescriptor, enc EncoderConfig) int {
	_, _, total := buildLinearHeads(desc, enc)
	return total
}

// InitialLinearParameters draws small random initial weights: tight for
// policy heads so initial distributions stay near uniform, wider for the
// value head.
func InitialLinearParameters(desc *ActionSpaceDescriptor, enc EncoderConfig, rng *rand.Rand) []float64 {
	heads, featDim, total := buildLinearHeads(desc, enc)
	weights := make([]float64, total)
	stride := featDim + 1
	for _, h := range heads {
		std := policyInitStd
		if h.name == valueHeadName {
			std = valueInitStd
		}
		scale := std / math.Sqrt(float64(stride))
		for i := 0; i < h.rows*stride; i++ {
			weights[h.offset+i] = rng.NormFloat64() * scale
		}
	}
	return weights
}

// NewLinearPolicyValue wraps a parameter snapshot. The snapshot's weight
// vector must match the layout exactly.
func NewLinearPolicyValue(desc *ActionSpaceDescriptor, enc EncoderConfig, snap ParameterSnapshot) (*LinearPolicyValue, error) {
	heads, featDim, total := buildLinearHeads(desc, enc)
	if len(snap.Weights) != total {
		return nil, fmt.Errorf("%w: snapshot has %d weights, layout needs %d", ErrShapeMismatch, len(snap.Weights), total)
	}
	return &LinearPolicyValue{
		desc:    desc,
		enc:     enc,
		featDim: featDim,
		heads:   heads,
		total:   total,
		weights: snap.Weights,
	}, nil
}

// NewLinearNetworkFactory returns a NetworkFactory for worker use.
func NewLinearNetworkFactory(desc *ActionSpaceDescriptor, enc EncoderConfig) NetworkFactory {
	return func(snap ParameterSnapshot) (PolicyValueNetwork, error) {
		return NewLinearPolicyValue(desc, enc, snap)
	}
}

// features builds the shared feature vector: the fixed nonspatial vector
// followed by per-channel means of the screen and minimap tensors.
func (n *LinearPolicyValue) features(obs *EncodedObservation) ([]float64, error) {
	wantNonspatial := n.enc.NonspatialSize(n.desc.ActionCount())
	if len(obs.Nonspatial) != wantNonspatial {
		return nil, fmt.Errorf("%w: nonspatial length %d, want %d", ErrShapeMismatch, len(obs.Nonspatial), wantNonspatial)
	}
	phi := make([]float64, 0, n.featDim)
	phi = append(phi, obs.Nonspatial...)
	for c := 0; c < obs.Screen.C; c++ {
		phi = append(phi, obs.Screen.ChannelMean(c))
	}
	for c := 0; c < obs.Minimap.C; c++ {
		phi = append(phi, obs.Minimap.ChannelMean(c))
	}
	if len(phi) != n.featDim {
		return nil, fmt.Errorf("%w: feature length %d, want %d", ErrShapeMismatch, len(phi), n.featDim)
	}
	return phi, nil
}

// rowDot evaluates one head row: weights · phi + bias.
func (n *LinearPolicyValue) rowDot(h linearHead, row int, phi []float64) float64 {
	stride := n.featDim + 1
	w := n.weights[h.offset+row*stride : h.offset+(row+1)*stride]
	return floats.Dot(w[:n.featDim], phi) + w[n.featDim]
}

// headLogits evaluates all rows of one head.
func (n *LinearPolicyValue) headLogits(h linearHead, phi []float64) []float64 {
	logits := make([]float64, h.rows)
	for r := 0; r < h.rows; r++ {
		logits[r] = n.rowDot(h, r, phi)
	}
	return logits
}

// accumulateRow adds delta * [phi, 1] to one head row of the gradient vector.
func accumulateRow(grad []float64, h linearHead, row, featDim int, phi []float64, delta float64) {
	stride := featDim + 1
	dst := grad[h.offset+row*stride : h.offset+(row+1)*stride]
	floats.AddScaled(dst[:featDim], delta, phi)
	dst[featDim] += delta
}

// Forward produces the per-head distributions and the value estimate.
func (n *LinearPolicyValue) Forward(obs *EncodedObservation) (*PolicyOutput, error) {
	phi, err := n.features(obs)
	if err != nil {
		return nil, err
	}
	out := &PolicyOutput{Args: make(map[string][][]float64)}
	for _, h := range n.heads {
		switch h.name {
		case baseHeadName:
			out.Base = softmax(n.headLogits(h, phi))
		case valueHeadName:
			out.Value = n.rowDot(h, 0, phi)
		default:
			out.Args[h.name] = append(out.Args[h.name], softmax(n.headLogits(h, phi)))
		}
	}
	return out, nil
}

// Gradients computes the gradient of the combined loss over the batch.
// Argument heads sampled as ArgSampleUnused contribute no policy term (their
// one-hot target is all zeros) but still contribute entropy, matching the
// factored loss construction.
func (n *LinearPolicyValue) Gradients(batch *TrainingBatch) ([]float64, *TrainingSummary, error) {
	steps := len(batch.Steps)
	if steps == 0 {
		return nil, nil, fmt.Errorf("empty training batch")
	}
	if len(batch.Returns) != steps || len(batch.Advantages) != steps {
		return nil, nil, fmt.Errorf("%w: %d steps, %d returns, %d advantages", ErrShapeMismatch, steps, len(batch.Returns), len(batch.Advantages))
	}

	grad := make([]float64, n.total)
	var valueLoss, policyLoss, entropy float64

	valueHead := n.heads[len(n.heads)-1]
	baseHead := n.heads[0]
	argHeads := n.heads[1 : len(n.heads)-1]

	for i, step := range batch.Steps {
		phi, err := n.features(step.Obs)
		if err != nil {
			return nil, nil, err
		}
		advantage := batch.Advantages[i]
		target := batch.Returns[i]

		// Value head: 0.5 coefficient folded into the total loss.
		v := n.rowDot(valueHead, 0, phi)
		diff := v - target
		valueLoss += 0.5 * diff * diff
		accumulateRow(grad, valueHead, 0, n.featDim, phi, valueLossCoeff*diff)

		if step.BaseAction < 0 || step.BaseAction >= baseHead.rows {
			return nil, nil, fmt.Errorf("%w: base action %d", ErrIndexOutOfRange, step.BaseAction)
		}
		pl, h, err := n.accumulateHead(grad, baseHead, phi, step.BaseAction, advantage)
		if err != nil {
			return nil, nil, err
		}
		policyLoss += pl
		entropy += h

		for _, head := range argHeads {
			dims, ok := step.ArgSamples[head.name]
			if !ok || head.dim >= len(dims) {
				return nil, nil, fmt.Errorf("%w: no sample for argument %q dim %d", ErrShapeMismatch, head.name, head.dim)
			}
			sample := dims[head.dim]
			if sample >= head.rows {
				return nil, nil, fmt.Errorf("%w: argument %q dim %d sample %d", ErrIndexOutOfRange, head.name, head.dim, sample)
			}
			pl, h, err := n.accumulateHead(grad, head, phi, sample, advantage)
			if err != nil {
				return nil, nil, err
			}
			policyLoss += pl
			entropy += h
		}
	}

	summary := &TrainingSummary{
		ValueLoss:  valueLoss / float64(steps),
		PolicyLoss: policyLoss / float64(steps),
		Entropy:    entropy / float64(steps),
		GradNorm:   floats.Norm(grad, 2),
		Steps:      steps,
	}
	return grad, summary, nil
}

// accumulateHead adds one softmax head's policy and entropy gradient terms
// for a single step. sample < 0 marks an unused head: entropy only.
func (n *LinearPolicyValue) accumulateHead(grad []float64, h linearHead, phi []float64, sample int, advantage float64) (policyLoss, entropyTerm float64, err error) {
	probs := softmax(n.headLogits(h, phi))
	for _, p := range probs {
		entropyTerm -= p * math.Log(clipProb(p))
	}
	if sample >= 0 {
		policyLoss = -math.Log(clipProb(probs[sample])) * advantage
	}
	for j, p := range probs {
		// Entropy bonus enters the loss negated, so its gradient flips sign.
		delta := entropyCoeff * p * (math.Log(clipProb(p)) + entropyTerm)
		if sample >= 0 {
			if j == sample {
				delta += (p - 1) * advantage
			} else {
				delta += p * advantage
			}
		}
		accumulateRow(grad, h, j, n.featDim, phi, delta)
	}
	return policyLoss, entropyTerm, nil
}

// clipProb floors a probability before it reaches a logarithm.
func clipProb(p float64) float64 {
	if p < probFloor {
		return probFloor
	}
	return p
}

// softmax converts logits into a normalized distribution, max-subtracted for
// numerical stability.
func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	floats.Scale(1/sum, out)
	return out
}
