// Package network implements policy networks as Gorgonia computational
// graphs.
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// NeuralNet is a differentiable function from a batch of observation
// vectors to a batch of unnormalized per-action scores (logits). A
// NeuralNet owns its trainable parameters but not the virtual machine
// that executes it: callers construct their own tape machines, with or
// without gradient bookkeeping, so that inference during rollouts never
// binds dual values while the loss computation does.
type NeuralNet interface {
	// Graph returns the computational graph holding the network.
	Graph() *G.ExprGraph

	// Features returns the number of input features per observation.
	Features() int

	// Actions returns the number of logits predicted per observation.
	Actions() int

	// BatchSize returns the number of observations per forward pass.
	BatchSize() int

	// SetInput sets the value of the input node. The input is a
	// row-major flattening of BatchSize observation vectors.
	SetInput([]float64) error

	// Learnables returns the trainable parameter nodes.
	Learnables() G.Nodes

	// Model returns the trainable parameters with their gradients, in
	// the form Gorgonia solvers consume.
	Model() []G.ValueGrad

	// Prediction returns the graph node holding the logits.
	Prediction() *G.Node

	// Output returns the logits computed by the last run of a virtual
	// machine over the graph.
	Output() G.Value

	// CloneWithBatch clones the network architecture onto a fresh
	// graph with a new batch size. Weights are freshly initialized;
	// use Set to copy them from the source.
	CloneWithBatch(int) (NeuralNet, error)
}

// Set sets the weights of dst to be equal to the weights of src. The two
// networks must share an architecture.
func Set(dst, src NeuralNet) error {
	sourceNodes := src.Learnables()
	nodes := dst.Learnables()
	if len(nodes) != len(sourceNodes) {
		return fmt.Errorf("set: parameter count mismatch\n\twant(%d)"+
			"\n\thave(%d)", len(nodes), len(sourceNodes))
	}

	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return fmt.Errorf("set: could not copy parameter %d: %w", i, err)
		}
	}
	return nil
}
