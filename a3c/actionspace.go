package a3c

import "fmt"

// ArgType describes one typed argument field of the factored action space.
// Dims holds the declared size of each dimension; a declared size of 0 means
// the dimension is spatial and resolves to the active screen or minimap
// resolution, depending on the argument name.
type ArgType struct {
	Name string
	Dims []int
}

// ActionSpec describes a single base action: its environment-facing function
// id, its name, and the argument types it consumes, in call order.
type ActionSpec struct {
	ID   int
	Name string
	Args []ArgType
}

// SpatialConfig fixes the active spatial resolution and channel counts. The
// same values size both the network's spatial heads and the codec's sampling,
// so a single SpatialConfig instance must be shared by both.
type SpatialConfig struct {
	ScreenSize      int
	MinimapSize     int
	ScreenChannels  int
	MinimapChannels int
}

// DefaultSpatialConfig returns the standard 64x64 resolution with the full
// feature-layer channel set.
func DefaultSpatialConfig() SpatialConfig {
	return SpatialConfig{
		ScreenSize:      64,
		MinimapSize:     64,
		ScreenChannels:  17,
		MinimapChannels: 7,
	}
}

// Faction selects which faction-specific action subset extends the general
// action set.
type Faction string

const (
	FactionTerran  Faction = "T"
	FactionProtoss Faction = "P"
	FactionZerg    Faction = "Z"
)

// ActionSpaceDescriptor is the immutable description of the factored action
// space: the general actions, the faction actions appended after them, and
// the catalogue of argument types. Built once at startup; indices are stable
// and contiguous with general actions first.
type ActionSpaceDescriptor struct {
	general  []ActionSpec
	race     []ActionSpec
	argTypes []ArgType
	spatial  SpatialConfig
}

// NewActionSpaceDescriptor builds the descriptor for the given faction from
// the static catalogue, resolving spatial argument sizes against sp.
func NewActionSpaceDescriptor(faction Faction, sp SpatialConfig) (*ActionSpaceDescriptor, error) {
	race, ok := factionActions[faction]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFaction, faction)
	}
	return &ActionSpaceDescriptor{
		general:  generalActions,
		race:     race,
		argTypes: argTypeCatalog,
		spatial:  sp,
	}, nil
}

// ActionCount returns the total number of base actions.
func (d *ActionSpaceDescriptor) ActionCount() int {
	return len(d.general) + len(d.race)
}

// GeneralCount returns the number of faction-independent actions.
func (d *ActionSpaceDescriptor) GeneralCount() int { return len(d.general) }

// RaceCount returns the number of faction-specific actions.
func (d *ActionSpaceDescriptor) RaceCount() int { return len(d.race) }

// Spatial returns the active spatial configuration.
func (d *ActionSpaceDescriptor) Spatial() SpatialConfig { return d.spatial }

// Resolve maps a contiguous action index to its ActionSpec. Indices below
// GeneralCount route to the general set, the remainder offset into the
// faction set.
func (d *ActionSpaceDescriptor) Resolve(index int) (ActionSpec, error) {
	if index < 0 || index >= d.ActionCount() {
		return ActionSpec{}, fmt.Errorf("%w: %d (action count %d)", ErrIndexOutOfRange, index, d.ActionCount())
	}
	if index < len(d.general) {
		return d.general[index], nil
	}
	return d.race[index-len(d.general)], nil
}

// ArgTypes returns the full argument-type catalogue in declared order. Every
// policy head and every codec sample iterates this same slice, which is what
// keeps their shapes aligned.
func (d *ActionSpaceDescriptor) ArgTypes() []ArgType { return d.argTypes }

// ArgDimSize resolves the size of one argument dimension. Declared size 0
// resolves to the minimap resolution for minimap-named arguments and to the
// screen resolution otherwise.
func (d *ActionSpaceDescriptor) ArgDimSize(arg ArgType, dim int) int {
	size := arg.Dims[dim]
	if size != 0 {
		return size
	}
	if arg.Name == argMinimap {
		return d.spatial.MinimapSize
	}
	return d.spatial.ScreenSize
}
