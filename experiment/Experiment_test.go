package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"polgrad/experiment/tracker"
	"polgrad/trajectory"
)

// stubAgent returns a canned batch of two 10-step episodes with reward 1
// per step, and records how it was driven.
type stubAgent struct {
	collects   int
	updates    int
	collectErr error
	updateErr  error
}

func (s *stubAgent) Collect(minBatchSize int) (trajectory.Batch, error) {
	s.collects++
	if s.collectErr != nil {
		return nil, s.collectErr
	}

	batch := make(trajectory.Batch, 20)
	for i := range batch {
		batch[i] = trajectory.Step{
			Obs:    mat.NewVecDense(1, []float64{0}),
			Action: 0,
			Reward: 1,
			Done:   (i+1)%10 == 0,
		}
	}
	return batch, nil
}

func (s *stubAgent) Update(batch trajectory.Batch) (float64, error) {
	s.updates++
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	return 0.5, nil
}

// recordingTracker caches every EpochStats it is given.
type recordingTracker struct {
	stats []tracker.EpochStats
	saved bool
}

func (r *recordingTracker) Track(s tracker.EpochStats) {
	r.stats = append(r.stats, s)
}

func (r *recordingTracker) Save() error {
	r.saved = true
	return nil
}

func TestRunReportsEpochStats(t *testing.T) {
	agent := &stubAgent{}
	rec := &recordingTracker{}
	e := New(agent, 3, 20, rec)

	var out bytes.Buffer
	e.out = &out

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}

	if agent.collects != 3 || agent.updates != 3 {
		t.Errorf("expected 3 collects and updates, got %d and %d",
			agent.collects, agent.updates)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected one output line per epoch, got %d lines",
			len(lines))
	}
	// 20 steps of reward 1 over 2 episodes
	if !strings.Contains(lines[0], "epoch: 0") ||
		!strings.Contains(lines[0], "episodes: 2") ||
		!strings.Contains(lines[0], "avg reward per episode: 10.00") {
		t.Errorf("unexpected epoch line %q", lines[0])
	}

	if len(rec.stats) != 3 {
		t.Fatalf("expected 3 tracked epochs, got %d", len(rec.stats))
	}
	stats := rec.stats[1]
	if stats.Epoch != 1 || stats.Steps != 20 || stats.Episodes != 2 ||
		stats.AverageReward != 10 || stats.Loss != 0.5 {
		t.Errorf("unexpected epoch stats %+v", stats)
	}
}

func TestRunAbortsOnCollectError(t *testing.T) {
	boom := errors.New("simulator crashed")
	agent := &stubAgent{collectErr: boom}
	e := New(agent, 5, 20)

	var out bytes.Buffer
	e.out = &out

	err := e.Run()
	if !errors.Is(err, boom) {
		t.Errorf("expected collect error to propagate, got %v", err)
	}
	if agent.collects != 1 {
		t.Errorf("expected the run to abort after the first collect, "+
			"got %d collects", agent.collects)
	}
	if agent.updates != 0 {
		t.Error("update ran on a failed collect")
	}
}

func TestRunAbortsOnUpdateError(t *testing.T) {
	boom := fmt.Errorf("non-finite loss")
	agent := &stubAgent{updateErr: boom}
	e := New(agent, 5, 20)

	var out bytes.Buffer
	e.out = &out

	if err := e.Run(); !errors.Is(err, boom) {
		t.Errorf("expected update error to propagate, got %v", err)
	}
	if agent.updates != 1 {
		t.Errorf("expected the run to abort after the first update, "+
			"got %d updates", agent.updates)
	}
}

func TestSaveSavesAllTrackers(t *testing.T) {
	agent := &stubAgent{}
	first, second := &recordingTracker{}, &recordingTracker{}
	e := New(agent, 1, 20, first)
	e.Register(second)

	var out bytes.Buffer
	e.out = &out

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(); err != nil {
		t.Fatal(err)
	}
	if !first.saved || !second.saved {
		t.Error("not all trackers were saved")
	}
}
