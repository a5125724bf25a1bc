// Package policy implements action selection from policy networks.
package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"

	"polgrad/network"
)

// Categorical selects discrete actions by sampling from the softmax
// distribution over a policy network's logits. Sampling is stochastic
// rather than greedy: policy-gradient learning needs the exploration.
//
// The sampler runs its network with a plain tape machine and no gradient
// bookkeeping, so action selection during rollouts never grows a
// differentiation graph. It keeps no state between calls beyond the
// random number stream.
type Categorical struct {
	net  network.NeuralNet
	vm   G.VM
	dist distuv.Categorical
}

// NewCategorical returns a Categorical sampling actions from net, which
// must have batch size 1. The sampler's random stream is deterministic
// given seed.
func NewCategorical(net network.NeuralNet, seed uint64) (*Categorical, error) {
	if net.BatchSize() != 1 {
		return nil, fmt.Errorf("newcategorical: sampling requires a "+
			"batch size of 1\n\thave(%d)", net.BatchSize())
	}

	// Placeholder weights; reweighted with softmax probabilities on
	// every draw.
	weights := make([]float64, net.Actions())
	for i := range weights {
		weights[i] = 1.0
	}
	dist := distuv.NewCategorical(weights, rand.NewSource(seed))

	return &Categorical{
		net:  net,
		vm:   G.NewTapeMachine(net.Graph()),
		dist: dist,
	}, nil
}

// Network returns the policy network the sampler draws actions from.
func (c *Categorical) Network() network.NeuralNet {
	return c.net
}

// SelectAction samples one action index for the given observation
// according to the softmax distribution over the network's logits.
func (c *Categorical) SelectAction(obs mat.Vector) (int, error) {
	logits, err := c.Logits(obs)
	if err != nil {
		return 0, fmt.Errorf("selectaction: %w", err)
	}

	probs := Softmax(logits)
	for i, p := range probs {
		c.dist.Reweight(i, p)
	}

	return int(c.dist.Rand()), nil
}

// Logits runs the network forward on a single observation and returns
// the per-action logits.
func (c *Categorical) Logits(obs mat.Vector) ([]float64, error) {
	if obs.Len() != c.net.Features() {
		return nil, fmt.Errorf("logits: observation has %d features, "+
			"network takes %d: %w", obs.Len(), c.net.Features(),
			network.ErrShapeMismatch)
	}

	input := make([]float64, obs.Len())
	for i := range input {
		input[i] = obs.AtVec(i)
	}
	if err := c.net.SetInput(input); err != nil {
		return nil, fmt.Errorf("logits: %w", err)
	}

	if err := c.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("logits: could not run forward pass: %w", err)
	}
	out := c.net.Output().Data().([]float64)
	logits := make([]float64, len(out))
	copy(logits, out)
	c.vm.Reset()

	for _, l := range logits {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return nil, fmt.Errorf("logits: non-finite logit %v: %w", l,
				network.ErrNumericInstability)
		}
	}

	return logits, nil
}

// Softmax returns the categorical probability distribution induced by
// the given logits. The maximum logit is subtracted before
// exponentiation for numerical stability.
func Softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(v - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
