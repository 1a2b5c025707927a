package a3c

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/rtsagent/a3c-trainer/a3c/trace"
)

// CheckpointFunc persists the current shared state. The coordinator installs
// one on the designated worker only; other workers carry nil.
type CheckpointFunc func(globalEpisode int64) error

// WorkerConfig carries the per-worker training schedule.
type WorkerConfig struct {
	Gamma            float64
	RolloutCutoff    int
	MaxEpisodeLength int
	SaveIncrement    int64
	SummaryWindow    int
}

// Worker runs episodes against its private environment, trains on rollout
// segments against parameter snapshots, and pushes gradients to the shared
// store. Workers never talk to each other; the store is the only shared
// state they touch.
type Worker struct {
	id      int
	env     Environment
	store   *GlobalParameterStore
	factory NetworkFactory
	desc    *ActionSpaceDescriptor
	encoder *ObservationEncoder
	codec   *ActionCodec
	rng     *rand.Rand
	cfg     WorkerConfig

	stats      *Stats
	trace      *trace.TrainingTrace
	checkpoint CheckpointFunc
	log        *logrus.Entry

	rollout *Rollout
	state   *AgentState

	episodeCount   int64
	totalSteps     int64
	rewardHistory  []float64
	lengthHistory  []int
	meanValHistory []float64
}

// NewWorker wires a worker to its collaborators. The RNG must be private to
// this worker; environments are owned and closed by the worker.
func NewWorker(id int, env Environment, store *GlobalParameterStore, factory NetworkFactory,
	desc *ActionSpaceDescriptor, enc EncoderConfig, rng *rand.Rand, cfg WorkerConfig,
	stats *Stats, tr *trace.TrainingTrace) *Worker {
	return &Worker{
		id:      id,
		env:     env,
		store:   store,
		factory: factory,
		desc:    desc,
		encoder: NewObservationEncoder(desc, enc),
		codec:   NewActionCodec(desc),
		rng:     rng,
		cfg:     cfg,
		stats:   stats,
		trace:   tr,
		log:     logrus.WithField("worker", id),
		rollout: NewRollout(cfg.RolloutCutoff),
		state:   NewAgentState(desc, enc),
	}
}

// SetCheckpointFunc designates this worker as the one that increments the
// global episode counter and writes snapshots.
func (w *Worker) SetCheckpointFunc(fn CheckpointFunc) {
	w.checkpoint = fn
}

// Run executes episodes until the context is cancelled. Cancellation is only
// observed at episode boundaries; a worker never abandons a half-trained
// episode. Any environment or training error stops this worker for good.
func (w *Worker) Run(ctx context.Context) error {
	defer w.env.Close()
	w.log.Info("worker starting")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopping")
			return nil
		default:
		}
		if err := w.runEpisode(); err != nil {
			w.log.WithError(err).Error("worker failed")
			return fmt.Errorf("worker %d: %w", w.id, err)
		}
	}
}

func (w *Worker) runEpisode() error {
	// Fresh snapshot of the shared parameters for this episode.
	net, err := w.factory(w.store.Pull())
	if err != nil {
		return err
	}

	w.rollout.Clear()
	w.state.Reset()

	raw, err := w.env.Reset()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	obs, err := w.encoder.Encode(raw, w.state)
	if err != nil {
		return err
	}

	var (
		episodeReward float64
		episodeSteps  int
		valueSum      float64
		degenerate    int
		lastSummary   *TrainingSummary
	)

	for step := 0; step < w.cfg.MaxEpisodeLength; step++ {
		out, err := net.Forward(obs)
		if err != nil {
			return err
		}
		sel, err := w.codec.SelectAction(out, obs.AvailableIDs, w.rng)
		if err != nil {
			return err
		}
		if sel.DegenerateMask {
			degenerate++
			w.stats.DegenerateFallbacks.Add(1)
		}

		raw, err := w.env.Step(sel.Call)
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
		if err := w.state.RecordAction(w.desc, sel.BaseIndex); err != nil {
			return err
		}
		next, err := w.encoder.Encode(raw, w.state)
		if err != nil {
			return err
		}
		done := next.Terminal

		// On the terminal step the environment's closing frame is not a
		// usable successor state; the current one stands in for it.
		successor := next
		if done {
			successor = obs
		}
		w.rollout.Append(&RolloutStep{
			Obs:        obs,
			BaseAction: sel.BaseIndex,
			ArgSamples: sel.ArgSamples,
			Reward:     next.Reward,
			NextObs:    successor,
			Done:       done,
			Value:      out.Value,
		})
		episodeReward += next.Reward
		episodeSteps++
		valueSum += out.Value
		w.totalSteps++
		w.stats.TotalSteps.Add(1)

		// Mid-episode training: bootstrap from the current value estimate,
		// keep the recent half of the buffer, and resync with the store.
		// Skipped one completed step short of the length cap.
		if w.rollout.Len() == w.cfg.RolloutCutoff && !done && episodeSteps != w.cfg.MaxEpisodeLength-1 {
			bootOut, err := net.Forward(next)
			if err != nil {
				return err
			}
			summary, err := w.train(net, bootOut.Value, true)
			if err != nil {
				return err
			}
			lastSummary = summary
			w.rollout.TruncateToRecent()
			net, err = w.factory(w.store.Pull())
			if err != nil {
				return err
			}
		}

		obs = next
		if done {
			break
		}
	}

	w.episodeCount++
	w.stats.RecordEpisode(episodeReward)
	w.rewardHistory = append(w.rewardHistory, episodeReward)
	w.lengthHistory = append(w.lengthHistory, episodeSteps)
	if episodeSteps > 0 {
		w.meanValHistory = append(w.meanValHistory, valueSum/float64(episodeSteps))
	} else {
		w.meanValHistory = append(w.meanValHistory, 0)
	}

	// Final flush with a zero bootstrap: the episode is over, there is no
	// future return to estimate.
	if w.rollout.Len() > 0 {
		summary, err := w.train(net, 0, false)
		if err != nil {
			return err
		}
		lastSummary = summary
		w.rollout.Clear()
	}

	globalEpisode := w.stats.GlobalEpisodes.Load()
	if w.checkpoint != nil {
		globalEpisode = w.stats.GlobalEpisodes.Add(1)
		if globalEpisode%w.cfg.SaveIncrement == 0 {
			if err := w.checkpoint(globalEpisode); err != nil {
				return fmt.Errorf("checkpoint: %w", err)
			}
		}
	}

	w.trace.RecordEpisode(trace.EpisodeRecord{
		Worker:        w.id,
		Episode:       w.episodeCount,
		GlobalEpisode: globalEpisode,
		Steps:         episodeSteps,
		Score:         episodeReward,
		Degenerate:    degenerate,
	})

	w.log.WithFields(logrus.Fields{
		"episode": w.episodeCount,
		"steps":   episodeSteps,
		"reward":  episodeReward,
	}).Info("episode finished")

	if w.episodeCount%int64(w.cfg.SummaryWindow) == 0 {
		w.logSummary(lastSummary)
	}
	return nil
}

// train runs GAE over the buffered rollout and pushes the resulting gradient
// to the shared store.
func (w *Worker) train(net PolicyValueNetwork, bootstrap float64, bootstrapped bool) (*TrainingSummary, error) {
	returns, advantages, err := ComputeAdvantages(w.rollout.Rewards(), w.rollout.Values(), bootstrap, w.cfg.Gamma)
	if err != nil {
		return nil, err
	}
	batch := &TrainingBatch{
		Steps:      w.rollout.Steps(),
		Returns:    returns,
		Advantages: advantages,
	}
	grads, summary, err := net.Gradients(batch)
	if err != nil {
		return nil, err
	}
	if err := w.store.Push(grads); err != nil {
		return nil, err
	}
	w.stats.TrainingPushes.Add(1)
	w.trace.RecordTraining(trace.TrainingRecord{
		Worker:       w.id,
		Episode:      w.episodeCount,
		StoreVersion: w.store.Version(),
		Steps:        summary.Steps,
		ValueLoss:    summary.ValueLoss,
		PolicyLoss:   summary.PolicyLoss,
		Entropy:      summary.Entropy,
		GradNorm:     summary.GradNorm,
		Bootstrapped: bootstrapped,
	})
	return summary, nil
}

// logSummary reports windowed episode averages plus the latest losses.
func (w *Worker) logSummary(last *TrainingSummary) {
	window := w.cfg.SummaryWindow
	if window > len(w.rewardHistory) {
		window = len(w.rewardHistory)
	}
	var reward, length, value float64
	for i := len(w.rewardHistory) - window; i < len(w.rewardHistory); i++ {
		reward += w.rewardHistory[i]
		length += float64(w.lengthHistory[i])
		value += w.meanValHistory[i]
	}
	fields := logrus.Fields{
		"mean_reward": reward / float64(window),
		"mean_length": length / float64(window),
		"mean_value":  value / float64(window),
		"max_score":   w.stats.MaxScore(),
		"avg_score":   w.stats.RunningAverage(),
	}
	if last != nil {
		fields["value_loss"] = last.ValueLoss
		fields["policy_loss"] = last.PolicyLoss
		fields["entropy"] = last.Entropy
		fields["grad_norm"] = last.GradNorm
	}
	w.log.WithFields(fields).Info("training summary")
}
