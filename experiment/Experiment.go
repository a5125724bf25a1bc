// Package experiment drives training runs and reports their progress.
package experiment

import (
	"fmt"
	"io"
	"os"

	"polgrad/experiment/tracker"
	"polgrad/trajectory"
)

// Agent is a training session that can collect a batch of rollout data
// with its current policy and perform one optimization step on it.
type Agent interface {
	Collect(minBatchSize int) (trajectory.Batch, error)
	Update(trajectory.Batch) (float64, error)
}

// Experiment repeatedly collects a batch and updates the agent's policy
// for a fixed number of epochs, reporting one line of statistics per
// epoch. An epoch either completes or aborts the whole run: errors are
// never retried, since a corrupted rollout or parameter update
// invalidates the training signal for the rest of the run.
type Experiment struct {
	agent        Agent
	numEpochs    int
	minBatchSize int
	trackers     []tracker.Tracker
	out          io.Writer
}

// New creates and returns a new Experiment training agent for numEpochs
// epochs of at least minBatchSize steps each. Per-epoch statistics are
// written to standard output and cached in the given trackers.
func New(agent Agent, numEpochs, minBatchSize int,
	trackers ...tracker.Tracker) *Experiment {
	return &Experiment{
		agent:        agent,
		numEpochs:    numEpochs,
		minBatchSize: minBatchSize,
		trackers:     trackers,
		out:          os.Stdout,
	}
}

// Register registers a tracker.Tracker with the Experiment so that data
// generated during the experiment can be tracked and saved.
func (e *Experiment) Register(t tracker.Tracker) {
	e.trackers = append(e.trackers, t)
}

// Run runs all epochs of the experiment.
func (e *Experiment) Run() error {
	for epoch := 0; epoch < e.numEpochs; epoch++ {
		batch, err := e.agent.Collect(e.minBatchSize)
		if err != nil {
			return fmt.Errorf("run: epoch %d: %w", epoch, err)
		}

		// The collector stops only at episode boundaries, so a batch
		// with no completed episode cannot occur.
		episodes := batch.Episodes()
		if episodes == 0 {
			return fmt.Errorf("run: epoch %d: batch of %d steps contains "+
				"no completed episode", epoch, len(batch))
		}
		averageReward := batch.TotalReward() / float64(episodes)

		loss, err := e.agent.Update(batch)
		if err != nil {
			return fmt.Errorf("run: epoch %d: %w", epoch, err)
		}

		fmt.Fprintf(e.out, "epoch: %-4d episodes: %-5d avg reward per "+
			"episode: %.2f\n", epoch, episodes, averageReward)

		e.track(tracker.EpochStats{
			Epoch:         epoch,
			Steps:         len(batch),
			Episodes:      episodes,
			AverageReward: averageReward,
			Loss:          loss,
		})
	}
	return nil
}

// Save saves all the data cached by the trackers to disk.
func (e *Experiment) Save() error {
	for _, t := range e.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// track caches the epoch statistics in each tracker.
func (e *Experiment) track(stats tracker.EpochStats) {
	for _, t := range e.trackers {
		t.Track(stats)
	}
}
