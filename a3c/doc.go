// Package a3c provides an asynchronous advantage actor-critic trainer over a
// factored action space.
//
// # Reading Guide
//
// Start with these three files to understand the training kernel:
//   - worker.go: the episode loop, rollout buffering, and training cadence
//   - params.go: the shared parameter store (pull snapshots, push clipped Adam updates)
//   - advantage.go: discounted returns and generalized advantage estimation
//
// # Architecture
//
// The coordinator builds one worker per configured slot. Each worker owns a
// private environment and RNG stream; the GlobalParameterStore is the only
// shared mutable state. Workers pull a parameter snapshot per episode (and
// after each mid-episode push), compute gradients locally, and push them
// back. Snapshots may be stale when the push lands; that staleness is part
// of the algorithm, not a race to fix.
//
// Supporting sub-packages:
//   - a3c/trace/: run-trace recording (pure data types, no trainer deps)
//   - a3c/checkpoint/: zstd-compressed gob snapshots with retention pruning
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Environment: the game process boundary (Reset, Step, Close)
//   - PolicyValueNetwork: per-head distributions, value estimate, gradients
//   - EnvironmentFactory / NetworkFactory: per-worker construction
//
// LinearPolicyValue is the built-in network; scripted.go registers the
// built-in maps that stand in for an external game process.
package a3c
