package a3c

import "errors"

// Sentinel errors for fatal conditions. All of these indicate a configuration
// or shape mismatch between components and are never recovered; workers
// surface them and terminate.
var (
	// ErrIndexOutOfRange reports an action or argument index outside the
	// bounds declared by the action-space descriptor.
	ErrIndexOutOfRange = errors.New("action index out of range")

	// ErrShapeMismatch reports a probability distribution whose length does
	// not match the size the descriptor declares for that head.
	ErrShapeMismatch = errors.New("distribution shape mismatch")

	// ErrGradientSize reports a gradient vector whose length does not match
	// the parameter vector owned by the global store.
	ErrGradientSize = errors.New("gradient length does not match parameter vector")

	// ErrUnknownMap reports a map name with no registered scripted environment.
	ErrUnknownMap = errors.New("unknown map")

	// ErrUnknownFaction reports a faction tag outside the catalogue.
	ErrUnknownFaction = errors.New("unknown faction")
)
