package experiment

import (
	"bytes"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"polgrad/network"
	"polgrad/reinforce"
	"polgrad/solver"
)

// tenStepEnv always yields reward 1 and terminates after exactly 10
// steps, so the average reward per episode is 10 for any policy.
type tenStepEnv struct {
	steps int
}

func (e *tenStepEnv) Reset() (mat.Vector, error) {
	e.steps = 0
	return mat.NewVecDense(3, []float64{0.1, 0.2, 0.3}), nil
}

func (e *tenStepEnv) Step(action int) (mat.Vector, float64, bool, error) {
	e.steps++
	obs := mat.NewVecDense(3, []float64{0.1, 0.2, 0.1 * float64(e.steps)})
	return obs, 1.0, e.steps >= 10, nil
}

func (e *tenStepEnv) ObservationSize() int { return 3 }
func (e *tenStepEnv) NumActions() int      { return 2 }

func TestTrainingReportsStubEnvironmentReturn(t *testing.T) {
	adam, err := solver.NewDefaultAdam(1e-2, 1)
	if err != nil {
		t.Fatal(err)
	}

	agent, err := reinforce.New(&tenStepEnv{}, reinforce.Config{
		HiddenSizes: []int{8},
		Biases:      []bool{true},
		Activations: []*network.Activation{network.TanH()},
		InitWFn:     G.GlorotN(1.0),
		Solver:      adam,
		Seed:        42,
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := &recordingTracker{}
	e := New(agent, 3, 30, rec)

	var out bytes.Buffer
	e.out = &out

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}

	for _, stats := range rec.stats {
		if stats.AverageReward != 10 {
			t.Errorf("epoch %d: expected average reward per episode 10, "+
				"got %v", stats.Epoch, stats.AverageReward)
		}
		if stats.Steps%10 != 0 || stats.Steps < 30 {
			t.Errorf("epoch %d: expected a batch of at least 30 steps of "+
				"complete 10-step episodes, got %d", stats.Epoch, stats.Steps)
		}
		if stats.Episodes != stats.Steps/10 {
			t.Errorf("epoch %d: expected %d episodes, got %d", stats.Epoch,
				stats.Steps/10, stats.Episodes)
		}
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 epoch lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "avg reward per episode: 10.00") {
		t.Errorf("unexpected final epoch line %q", lines[2])
	}
}
