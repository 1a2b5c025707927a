package a3c

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// TrainingKey uniquely identifies a reproducible single-threaded component
// of a training run. Components seeded from the same TrainingKey and
// subsystem name produce identical random streams.
type TrainingKey int64

// NewTrainingKey creates a TrainingKey from a seed value.
func NewTrainingKey(seed int64) TrainingKey {
	return TrainingKey(seed)
}

const (
	// SubsystemInit seeds initial network parameter draws.
	SubsystemInit = "init"

	// SubsystemEnv seeds environment-side randomness shared across maps.
	SubsystemEnv = "env"
)

// SubsystemWorker returns the subsystem name for worker N's action sampling.
func SubsystemWorker(id int) string {
	return fmt.Sprintf("worker_%d", id)
}

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem. Each worker pulls its own stream so concurrent runs with the
// same seed keep per-worker behavior reproducible regardless of scheduling.
//
// Derivation: masterSeed XOR fnv1a64(subsystemName), except SubsystemInit,
// which uses the master seed directly so parameter initialization tracks
// --seed one-to-one.
//
// Thread-safety: NOT thread-safe. Derive all streams before starting
// workers; each *rand.Rand is then owned by one goroutine.
type PartitionedRNG struct {
	key        TrainingKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a TrainingKey.
func NewPartitionedRNG(key TrainingKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemInit {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the TrainingKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() TrainingKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
