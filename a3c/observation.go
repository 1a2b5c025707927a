package a3c

import "fmt"

// unitMemoryFloor clamps the decayed enemy histogram to zero once the decay
// has pushed an entry below any meaningful count.
const unitMemoryFloor = 1e-6

// EncoderConfig fixes the shape of the nonspatial vector. The maxima for the
// variable-length raw fields size buffers identically to the network's
// expected input width, so they must not change between runs of the same
// model.
type EncoderConfig struct {
	UnitTypeCount int     // length of the decayed enemy-unit histogram
	UnitDecay     float64 // per-step decay ratio of the histogram

	MaxMultiSelect int // max selected units encoded
	MaxCargo       int // max cargo entries encoded
	MaxBuildQueue  int // max build-queue entries encoded
	SelectEntry    int // values per selected-unit entry

	PlayerVector  int // scalar player stats (minerals, food, ...)
	ControlGroups int // control-group slots times entry width

	// Screen channel layout used by the enemy scan.
	PlayerRelativeChannel int
	UnitTypeChannel       int
	EnemyMarker           float64
}

// DefaultEncoderConfig mirrors the standard feature layout: 7-wide unit
// entries, 500 multi-select and cargo slots, 10 build-queue slots, channel 5
// relative-to-player with enemy marker 4, channel 6 unit type.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{
		UnitTypeCount:         DefaultUnitTypeCount,
		UnitDecay:             0.75,
		MaxMultiSelect:        500,
		MaxCargo:              500,
		MaxBuildQueue:         10,
		SelectEntry:           7,
		PlayerVector:          11,
		ControlGroups:         20,
		PlayerRelativeChannel: 5,
		UnitTypeChannel:       6,
		EnemyMarker:           4,
	}
}

// NonspatialSize returns the fixed length of the encoded nonspatial vector
// for an action space with actionCount base actions. The network sizes its
// input from the same call.
func (c EncoderConfig) NonspatialSize(actionCount int) int {
	size := c.UnitTypeCount // decayed enemy histogram
	size += actionCount     // per-action usage counts (general then race)
	size += actionCount     // availability mask
	size++                  // last action used
	size += c.PlayerVector
	size += c.ControlGroups
	size += c.SelectEntry // single select
	size += c.MaxMultiSelect * c.SelectEntry
	size += c.MaxCargo * c.SelectEntry
	size += c.MaxBuildQueue * c.SelectEntry
	return size
}

// Tensor3 is a dense H x W x C tensor in row-major y, x, channel order.
type Tensor3 struct {
	H, W, C int
	Data    []float64
}

// NewTensor3 allocates a zeroed tensor.
func NewTensor3(h, w, c int) *Tensor3 {
	return &Tensor3{H: h, W: w, C: c, Data: make([]float64, h*w*c)}
}

// At returns the value at (y, x, channel).
func (t *Tensor3) At(y, x, c int) float64 { return t.Data[(y*t.W+x)*t.C+c] }

// Set stores a value at (y, x, channel).
func (t *Tensor3) Set(y, x, c int, v float64) { t.Data[(y*t.W+x)*t.C+c] = v }

// ChannelMean returns the mean over one channel plane.
func (t *Tensor3) ChannelMean(c int) float64 {
	if t.H*t.W == 0 {
		return 0
	}
	var sum float64
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			sum += t.At(y, x, c)
		}
	}
	return sum / float64(t.H*t.W)
}

// AgentState is the per-episode mutable state carried across encoder calls:
// the last action index used, the decayed largest-enemy-presence histogram,
// and per-action usage counters split general/faction.
type AgentState struct {
	LastActionUsed int
	MaxUnitsSeen   []float64
	UsedGeneral    []float64
	UsedRace       []float64
}

// NewAgentState allocates zeroed state sized for the descriptor.
func NewAgentState(desc *ActionSpaceDescriptor, cfg EncoderConfig) *AgentState {
	return &AgentState{
		MaxUnitsSeen: make([]float64, cfg.UnitTypeCount),
		UsedGeneral:  make([]float64, desc.GeneralCount()),
		UsedRace:     make([]float64, desc.RaceCount()),
	}
}

// Reset clears the state at an episode boundary.
func (s *AgentState) Reset() {
	s.LastActionUsed = 0
	clearFloats(s.MaxUnitsSeen)
	clearFloats(s.UsedGeneral)
	clearFloats(s.UsedRace)
}

// RecordAction updates the bookkeeping after an action has been sent to the
// environment.
func (s *AgentState) RecordAction(desc *ActionSpaceDescriptor, index int) error {
	if index < 0 || index >= desc.ActionCount() {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.LastActionUsed = index
	if index < desc.GeneralCount() {
		s.UsedGeneral[index]++
	} else {
		s.UsedRace[index-desc.GeneralCount()]++
	}
	return nil
}

func clearFloats(xs []float64) {
	for i := range xs {
		xs[i] = 0
	}
}

// EncodedObservation is the fixed-shape form consumed by the network.
type EncodedObservation struct {
	Reward     float64
	Terminal   bool
	Nonspatial []float64
	Screen     *Tensor3
	Minimap    *Tensor3

	// AvailableIDs carries the raw legality list through to action selection.
	AvailableIDs []int
}

// ObservationEncoder converts raw observations into fixed-shape tensors,
// updating the per-episode AgentState as a side effect.
type ObservationEncoder struct {
	desc *ActionSpaceDescriptor
	cfg  EncoderConfig
}

// NewObservationEncoder builds an encoder bound to one descriptor and layout.
func NewObservationEncoder(desc *ActionSpaceDescriptor, cfg EncoderConfig) *ObservationEncoder {
	return &ObservationEncoder{desc: desc, cfg: cfg}
}

// NonspatialSize returns the encoder's fixed nonspatial vector length.
func (e *ObservationEncoder) NonspatialSize() int {
	return e.cfg.NonspatialSize(e.desc.ActionCount())
}

// Encode builds the fixed-shape observation. The concatenation order of the
// nonspatial vector is a contract the network depends on: enemy histogram,
// general usage counts, faction usage counts, availability mask, last action
// used, then the remaining raw fields with variable-length ones zero-padded.
func (e *ObservationEncoder) Encode(raw *RawObservation, state *AgentState) (*EncodedObservation, error) {
	cfg := e.cfg

	// Scan the screen for enemy presence per unit type. Unit types outside
	// the catalogue are skipped, not an error.
	counts := make([]float64, cfg.UnitTypeCount)
	if len(raw.Screen) > cfg.PlayerRelativeChannel && len(raw.Screen) > cfg.UnitTypeChannel {
		relative := raw.Screen[cfg.PlayerRelativeChannel]
		unitType := raw.Screen[cfg.UnitTypeChannel]
		for y := range relative {
			for x := range relative[y] {
				if relative[y][x] != cfg.EnemyMarker {
					continue
				}
				ut := int(unitType[y][x])
				if ut >= 0 && ut < cfg.UnitTypeCount {
					counts[ut]++
				}
			}
		}
	}

	// Decay the running histogram, then take the element-wise max against the
	// fresh counts. This is a memory of the largest presence seen recently,
	// not an instantaneous count.
	for i := range state.MaxUnitsSeen {
		decayed := state.MaxUnitsSeen[i] * cfg.UnitDecay
		if decayed < unitMemoryFloor {
			decayed = 0
		}
		if counts[i] > decayed {
			decayed = counts[i]
		}
		state.MaxUnitsSeen[i] = decayed
	}

	// Availability mask in descriptor-index order.
	availSet := make(map[int]bool, len(raw.AvailableActionIDs))
	for _, id := range raw.AvailableActionIDs {
		availSet[id] = true
	}
	mask := make([]float64, e.desc.ActionCount())
	for i := range mask {
		spec, err := e.desc.Resolve(i)
		if err != nil {
			return nil, err
		}
		if availSet[spec.ID] {
			mask[i] = 1
		}
	}

	nonspatial := make([]float64, 0, e.NonspatialSize())
	nonspatial = append(nonspatial, state.MaxUnitsSeen...)
	nonspatial = append(nonspatial, state.UsedGeneral...)
	nonspatial = append(nonspatial, state.UsedRace...)
	nonspatial = append(nonspatial, mask...)
	nonspatial = append(nonspatial, float64(state.LastActionUsed))
	nonspatial = appendPadded(nonspatial, raw.Player, cfg.PlayerVector)
	nonspatial = appendPadded(nonspatial, raw.ControlGroups, cfg.ControlGroups)
	nonspatial = appendPadded(nonspatial, raw.SingleSelect, cfg.SelectEntry)
	nonspatial = appendPadded(nonspatial, raw.MultiSelect, cfg.MaxMultiSelect*cfg.SelectEntry)
	nonspatial = appendPadded(nonspatial, raw.Cargo, cfg.MaxCargo*cfg.SelectEntry)
	nonspatial = appendPadded(nonspatial, raw.BuildQueue, cfg.MaxBuildQueue*cfg.SelectEntry)

	if len(nonspatial) != e.NonspatialSize() {
		return nil, fmt.Errorf("%w: nonspatial length %d, want %d", ErrShapeMismatch, len(nonspatial), e.NonspatialSize())
	}

	sp := e.desc.Spatial()
	screen, err := stackLayers(raw.Screen, sp.ScreenSize, sp.ScreenChannels)
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}
	minimap, err := stackLayers(raw.Minimap, sp.MinimapSize, sp.MinimapChannels)
	if err != nil {
		return nil, fmt.Errorf("minimap: %w", err)
	}

	return &EncodedObservation{
		Reward:       raw.Reward,
		Terminal:     raw.Terminal,
		Nonspatial:   nonspatial,
		Screen:       screen,
		Minimap:      minimap,
		AvailableIDs: append([]int(nil), raw.AvailableActionIDs...),
	}, nil
}

// appendPadded appends src zero-padded (or clipped) to exactly n values.
func appendPadded(dst, src []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		if i < len(src) {
			dst = append(dst, src[i])
		} else {
			dst = append(dst, 0)
		}
	}
	return dst
}

// stackLayers converts [channel][y][x] layers into an H x W x C tensor in
// declared channel order. Missing layers or cells stay zero; an oversized
// layer set is a shape mismatch.
func stackLayers(layers [][][]float64, size, channels int) (*Tensor3, error) {
	if len(layers) > channels {
		return nil, fmt.Errorf("%w: %d layers, want at most %d", ErrShapeMismatch, len(layers), channels)
	}
	t := NewTensor3(size, size, channels)
	for c, layer := range layers {
		for y := 0; y < size && y < len(layer); y++ {
			row := layer[y]
			for x := 0; x < size && x < len(row); x++ {
				t.Set(y, x, c, row[x])
			}
		}
	}
	return t, nil
}
