package a3c

import (
	"fmt"
	"math/rand"
	"sort"
)

// Built-in scripted maps. They stand in for the external game process during
// development and testing: same observation shapes, same action protocol,
// deterministic given a seed.
//
//	skirmish: enemy marines scattered on screen; attacking near one kills it
//	          for +1 reward, episode ends when the field is clear.
//	drill:    fixed five-step episode with a known reward pattern, used to
//	          exercise the full training loop end to end.

type scriptedMapBuilder func(sp SpatialConfig, rng *rand.Rand) Environment

var scriptedMaps = map[string]scriptedMapBuilder{
	"skirmish": newSkirmishEnv,
	"drill": func(sp SpatialConfig, _ *rand.Rand) Environment {
		return newDrillEnv(sp)
	},
}

// KnownMaps lists the registered scripted map names, sorted.
func KnownMaps() []string {
	names := make([]string, 0, len(scriptedMaps))
	for name := range scriptedMaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewScriptedFactory returns an EnvironmentFactory for the named map. Each
// worker's environment is seeded independently from the training key so runs
// reproduce regardless of goroutine scheduling.
func NewScriptedFactory(mapName string, sp SpatialConfig, key TrainingKey) (EnvironmentFactory, error) {
	builder, ok := scriptedMaps[mapName]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownMap, mapName, KnownMaps())
	}
	return func(workerID int) (Environment, error) {
		seed := int64(key) ^ fnv1a64(fmt.Sprintf("%s_%d", SubsystemEnv, workerID))
		return builder(sp, rand.New(rand.NewSource(seed))), nil
	}, nil
}

// blankLayers allocates channel-major zeroed spatial layers.
func blankLayers(channels, size int) [][][]float64 {
	layers := make([][][]float64, channels)
	for c := range layers {
		layers[c] = make([][]float64, size)
		for y := range layers[c] {
			layers[c][y] = make([]float64, size)
		}
	}
	return layers
}

// baseObservation fills the fixed nonspatial fields every scripted map shares.
func baseObservation(sp SpatialConfig) *RawObservation {
	return &RawObservation{
		Screen:        blankLayers(sp.ScreenChannels, sp.ScreenSize),
		Minimap:       blankLayers(sp.MinimapChannels, sp.MinimapSize),
		Player:        make([]float64, 11),
		ControlGroups: make([]float64, 20),
		SingleSelect:  make([]float64, 7),
	}
}

// === skirmish ===

const (
	skirmishEnemies    = 8
	skirmishMaxSteps   = 240
	skirmishKillRadius = 8
	skirmishMarineType = 48

	attackScreenID = 12
	selectArmyID   = 7
	moveScreenID   = 331
	noOpID         = 0
)

type skirmishPoint struct{ x, y int }

type skirmishEnv struct {
	sp      SpatialConfig
	rng     *rand.Rand
	enemies []skirmishPoint
	steps   int
	closed  bool
}

func newSkirmishEnv(sp SpatialConfig, rng *rand.Rand) Environment {
	return &skirmishEnv{sp: sp, rng: rng}
}

func (e *skirmishEnv) Reset() (*RawObservation, error) {
	if e.closed {
		return nil, fmt.Errorf("skirmish: environment closed")
	}
	e.steps = 0
	e.enemies = e.enemies[:0]
	for i := 0; i < skirmishEnemies; i++ {
		e.enemies = append(e.enemies, skirmishPoint{
			x: e.rng.Intn(e.sp.ScreenSize),
			y: e.rng.Intn(e.sp.ScreenSize),
		})
	}
	return e.observe(0, false), nil
}

func (e *skirmishEnv) Step(call ActionCall) (*RawObservation, error) {
	if e.closed {
		return nil, fmt.Errorf("skirmish: environment closed")
	}
	e.steps++
	var reward float64
	if call.FunctionID == attackScreenID && len(call.Args) == 2 && len(call.Args[1]) == 2 {
		// Screen argument carries [x, y].
		tx, ty := call.Args[1][0], call.Args[1][1]
		for i, enemy := range e.enemies {
			dx, dy := enemy.x-tx, enemy.y-ty
			if dx*dx+dy*dy <= skirmishKillRadius*skirmishKillRadius {
				e.enemies = append(e.enemies[:i], e.enemies[i+1:]...)
				reward = 1
				break
			}
		}
	}
	done := len(e.enemies) == 0 || e.steps >= skirmishMaxSteps
	return e.observe(reward, done), nil
}

func (e *skirmishEnv) Close() error {
	e.closed = true
	return nil
}

func (e *skirmishEnv) observe(reward float64, done bool) *RawObservation {
	obs := baseObservation(e.sp)
	obs.Reward = reward
	obs.Terminal = done
	obs.AvailableActionIDs = []int{noOpID, selectArmyID, moveScreenID, attackScreenID}
	enc := DefaultEncoderConfig()
	for _, enemy := range e.enemies {
		obs.Screen[enc.PlayerRelativeChannel][enemy.y][enemy.x] = enc.EnemyMarker
		obs.Screen[enc.UnitTypeChannel][enemy.y][enemy.x] = skirmishMarineType
	}
	return obs
}

// === drill ===

const (
	drillLength = 5
)

type drillEnv struct {
	sp    SpatialConfig
	steps int
}

func newDrillEnv(sp SpatialConfig) Environment {
	return &drillEnv{sp: sp}
}

func (e *drillEnv) Reset() (*RawObservation, error) {
	e.steps = 0
	return e.observe(0, false), nil
}

// Step pays 1.0 on odd steps and 0.0 on even ones, ending after five steps
// regardless of the actions taken.
func (e *drillEnv) Step(ActionCall) (*RawObservation, error) {
	e.steps++
	reward := 0.0
	if e.steps%2 == 1 {
		reward = 1
	}
	return e.observe(reward, e.steps >= drillLength), nil
}

func (e *drillEnv) Close() error { return nil }

func (e *drillEnv) observe(reward float64, done bool) *RawObservation {
	obs := baseObservation(e.sp)
	obs.Reward = reward
	obs.Terminal = done
	obs.AvailableActionIDs = []int{noOpID, selectArmyID}
	return obs
}
