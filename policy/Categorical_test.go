package policy

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"polgrad/network"
)

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float64{1, 1})
	if math.Abs(probs[0]-0.5) > 1e-12 || math.Abs(probs[1]-0.5) > 1e-12 {
		t.Errorf("equal logits: expected [0.5 0.5], got %v", probs)
	}

	probs = Softmax([]float64{2, 0, 1})
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("expected probabilities to sum to 1, got %v", sum)
	}
	if !(probs[0] > probs[2] && probs[2] > probs[1]) {
		t.Errorf("expected probabilities ordered by logit, got %v", probs)
	}

	// Large logits must not overflow the exponentials
	probs = Softmax([]float64{1000, 999})
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Errorf("large logits: non-finite probability %v at %d", p, i)
		}
	}
	if probs[0] <= probs[1] {
		t.Errorf("expected the larger logit to dominate, got %v", probs)
	}

	// A dominant logit should take essentially all probability mass
	probs = Softmax([]float64{100, 0})
	if probs[0] < 0.999 {
		t.Errorf("expected a dominant logit to be selected almost "+
			"surely, got %v", probs)
	}
}

// newOnesNet returns a batch-1 network with all weights 1, so that two
// instances are identical regardless of random weight initialization.
func newOnesNet(t *testing.T) network.NeuralNet {
	t.Helper()

	net, err := network.NewPolicyMLP(2, 1, 2, G.NewGraph(), []int{},
		[]bool{}, G.Ones(), []*network.Activation{})
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func TestLogits(t *testing.T) {
	sampler, err := NewCategorical(newOnesNet(t), 14)
	if err != nil {
		t.Fatal(err)
	}

	// With weights of 1 and zero biases, each logit is the sum of the
	// observation's features.
	logits, err := sampler.Logits(mat.NewVecDense(2, []float64{0.25, 0.5}))
	if err != nil {
		t.Fatal(err)
	}
	if len(logits) != 2 {
		t.Fatalf("expected 2 logits, got %d", len(logits))
	}
	for i, l := range logits {
		if math.Abs(l-0.75) > 1e-12 {
			t.Errorf("expected logit %d to be 0.75, got %v", i, l)
		}
	}
}

func TestLogitsShapeMismatch(t *testing.T) {
	sampler, err := NewCategorical(newOnesNet(t), 14)
	if err != nil {
		t.Fatal(err)
	}

	_, err = sampler.Logits(mat.NewVecDense(3, []float64{1, 2, 3}))
	if err == nil {
		t.Error("expected an error for an observation of the wrong size")
	}
}

func TestLogitsNumericInstability(t *testing.T) {
	sampler, err := NewCategorical(newOnesNet(t), 14)
	if err != nil {
		t.Fatal(err)
	}

	// An infinite feature propagates through the forward pass and must
	// surface as an error rather than a corrupted distribution.
	obs := mat.NewVecDense(2, []float64{math.Inf(1), 0.5})
	_, err = sampler.Logits(obs)
	if !errors.Is(err, network.ErrNumericInstability) {
		t.Errorf("expected numeric instability error, got %v", err)
	}

	_, err = sampler.SelectAction(obs)
	if !errors.Is(err, network.ErrNumericInstability) {
		t.Errorf("selectaction: expected numeric instability error, got %v",
			err)
	}
}

func TestSelectActionIsSeededDeterministic(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{0.25, 0.5})

	first, err := NewCategorical(newOnesNet(t), 14)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewCategorical(newOnesNet(t), 14)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 25; i++ {
		a, err := first.SelectAction(obs)
		if err != nil {
			t.Fatal(err)
		}
		b, err := second.SelectAction(obs)
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Fatalf("draw %d: samplers with equal seeds disagree "+
				"(%d != %d)", i, a, b)
		}
		if a < 0 || a >= 2 {
			t.Fatalf("draw %d: action %d out of range", i, a)
		}
	}
}
