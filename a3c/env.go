package a3c

// ActionCall is the environment-facing form of a selected action: the
// catalogue function id plus one value list per declared argument type, in
// call order.
type ActionCall struct {
	FunctionID int
	Args       [][]int
}

// RawObservation is what the environment reports after reset or step. Spatial
// layers are indexed [channel][y][x]; the variable-length fields (MultiSelect,
// Cargo, BuildQueue) are flat and zero-padded by the encoder, never here.
type RawObservation struct {
	Reward   float64
	Terminal bool

	// AvailableActionIDs lists the catalogue function ids legal this step.
	AvailableActionIDs []int

	Screen  [][][]float64
	Minimap [][][]float64

	Player        []float64
	ControlGroups []float64
	SingleSelect  []float64
	MultiSelect   []float64
	Cargo         []float64
	BuildQueue    []float64
}

// Environment is the external game process boundary. Step and Reset are
// assumed bounded-latency; a hung call is fatal to the owning worker and is
// not retried.
type Environment interface {
	Reset() (*RawObservation, error)
	Step(call ActionCall) (*RawObservation, error)
	Close() error
}

// EnvironmentFactory builds one private environment instance per worker.
type EnvironmentFactory func(workerID int) (Environment, error)
