package a3c

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rtsagent/a3c-trainer/a3c/checkpoint"
	"github.com/rtsagent/a3c-trainer/a3c/trace"
)

// workerStartStagger spaces worker launches so their environments do not
// spin up simultaneously.
const workerStartStagger = 125 * time.Millisecond

// Coordinator owns the shared store, builds one worker per configured slot,
// and runs them until the context is cancelled or a worker fails. It is the
// only component that touches the checkpoint store.
type Coordinator struct {
	cfg     *TrainConfig
	desc    *ActionSpaceDescriptor
	enc     EncoderConfig
	store   *GlobalParameterStore
	stats   *Stats
	trace   *trace.TrainingTrace
	ckpt    *checkpoint.Store
	workers []*Worker
}

// NewCoordinator validates the configuration and wires up the full training
// assembly: descriptor, parameter store, environments, and workers. With
// Resume set, the most recent snapshot under ModelDir is loaded into the
// store before any worker starts.
func NewCoordinator(cfg *TrainConfig) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	sp := cfg.SpatialLayout()
	desc, err := NewActionSpaceDescriptor(Faction(cfg.Faction), sp)
	if err != nil {
		return nil, err
	}
	enc := DefaultEncoderConfig()

	key := NewTrainingKey(cfg.Seed)
	prng := NewPartitionedRNG(key)
	initial := InitialLinearParameters(desc, enc, prng.ForSubsystem(SubsystemInit))
	store := NewGlobalParameterStore(initial, cfg.Optimizer())

	c := &Coordinator{
		cfg:   cfg,
		desc:  desc,
		enc:   enc,
		store: store,
		stats: NewStats(),
		trace: trace.NewTrainingTrace(),
		ckpt:  checkpoint.NewStore(cfg.ModelDir, cfg.KeepSnapshots),
	}

	if cfg.Resume {
		snap, err := c.ckpt.Latest()
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		if err := store.Restore(StoreState{
			Weights:      snap.Weights,
			FirstMoment:  snap.FirstMoment,
			SecondMoment: snap.SecondMoment,
			Step:         snap.Step,
			Version:      snap.StoreVersion,
		}); err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		c.stats.GlobalEpisodes.Store(snap.GlobalEpisode)
		logrus.WithFields(logrus.Fields{
			"global_episode": snap.GlobalEpisode,
			"store_version":  snap.StoreVersion,
		}).Info("resumed from snapshot")
	}

	envFactory, err := NewScriptedFactory(cfg.Map, sp, key)
	if err != nil {
		return nil, err
	}
	netFactory := NewLinearNetworkFactory(desc, enc)
	wcfg := WorkerConfig{
		Gamma:            cfg.Gamma,
		RolloutCutoff:    cfg.RolloutCutoff,
		MaxEpisodeLength: cfg.MaxEpisodeLength,
		SaveIncrement:    cfg.SaveIncrement,
		SummaryWindow:    cfg.SummaryWindow,
	}

	for i := 0; i < cfg.Workers; i++ {
		env, err := envFactory(i)
		if err != nil {
			return nil, fmt.Errorf("environment %d: %w", i, err)
		}
		w := NewWorker(i, env, store, netFactory, desc, enc,
			prng.ForSubsystem(SubsystemWorker(i)), wcfg, c.stats, c.trace)
		c.workers = append(c.workers, w)
	}
	// The first worker is the designated episode counter and checkpointer.
	c.workers[0].SetCheckpointFunc(c.saveCheckpoint)

	return c, nil
}

// Store exposes the shared parameter store, mainly for inspection.
func (c *Coordinator) Store() *GlobalParameterStore { return c.store }

// Stats exposes the shared counters.
func (c *Coordinator) Stats() *Stats { return c.stats }

// Trace exposes the collected run trace.
func (c *Coordinator) Trace() *trace.TrainingTrace { return c.trace }

// Run launches every worker with a small stagger and blocks until all have
// stopped. A worker failure cancels the rest; they stop at their next
// episode boundary. All worker errors are joined into the return value.
func (c *Coordinator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"map":     c.cfg.Map,
		"faction": c.cfg.Faction,
		"workers": len(c.workers),
		"seed":    c.cfg.Seed,
	}).Info("training starting")

	errCh := make(chan error, len(c.workers))
	done := make(chan struct{}, len(c.workers))
	for i, w := range c.workers {
		if i > 0 {
			time.Sleep(workerStartStagger)
		}
		go func(w *Worker) {
			if err := w.Run(ctx); err != nil {
				errCh <- err
				cancel()
			}
			done <- struct{}{}
		}(w)
	}
	for range c.workers {
		<-done
	}
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	c.stats.Print()
	return errors.Join(errs...)
}

// saveCheckpoint snapshots the shared store state under the model directory.
func (c *Coordinator) saveCheckpoint(globalEpisode int64) error {
	state := c.store.Export()
	path, err := c.ckpt.Save(checkpoint.SnapshotV1{
		MapName:       c.cfg.Map,
		Faction:       c.cfg.Faction,
		Seed:          c.cfg.Seed,
		GlobalEpisode: globalEpisode,
		StoreVersion:  state.Version,
		Step:          state.Step,
		Weights:       state.Weights,
		FirstMoment:   state.FirstMoment,
		SecondMoment:  state.SecondMoment,
	})
	if err != nil {
		return err
	}
	c.trace.RecordCheckpoint(trace.CheckpointRecord{
		GlobalEpisode: globalEpisode,
		Path:          path,
		StoreVersion:  state.Version,
	})
	logrus.WithFields(logrus.Fields{
		"path":           path,
		"global_episode": globalEpisode,
	}).Info("saved model")
	return nil
}
