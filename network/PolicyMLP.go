package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// policyMLP implements a multi-layered perceptron mapping observation
// vectors to one logit per discrete action.
type policyMLP struct {
	g         *G.ExprGraph
	layers    []Layer
	input     *G.Node
	actions   int
	features  int
	batchSize int

	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewPolicyMLP creates and returns a new multi-layered perceptron
// predicting actions logits, placed on the graph g.
//
// The MLP has a number of layers equal to len(hiddenSizes) + 1: a final
// linear layer with a bias unit and no activation is always added so that
// the network predicts actions logits for any hidden layout. For index i,
// hiddenSizes[i] is the number of units in hidden layer i, biases[i]
// denotes whether that layer has a bias unit, and activations[i] is its
// activation function. The parameter init determines the weight
// initialization scheme.
func NewPolicyMLP(features, batch, actions int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (NeuralNet, error) {

	// Ensure one activation per hidden layer
	if len(hiddenSizes) != len(activations) {
		msg := "newpolicymlp: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}

	// Ensure one bias flag per hidden layer
	if len(hiddenSizes) != len(biases) {
		msg := "newpolicymlp: invalid number of biases\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	if features <= 0 || batch <= 0 || actions <= 0 {
		return nil, fmt.Errorf("newpolicymlp: features, batch, and actions "+
			"must be positive\n\thave(%d, %d, %d)", features, batch, actions)
	}

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	// Final linear layer predicting the logits
	sizes := append([]int{features}, hiddenSizes...)
	sizes = append(sizes, actions)
	layerBiases := append(append([]bool{}, biases...), true)
	layerActivations := append(append([]*Activation{}, activations...),
		Identity())

	layers := addfcLayers(g, sizes, layerBiases, layerActivations, init, "")

	net := policyMLP{
		g:           g,
		layers:      layers,
		input:       input,
		actions:     actions,
		features:    features,
		batchSize:   batch,
		hiddenSizes: hiddenSizes,
		biases:      biases,
		activations: activations,
	}
	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newpolicymlp: could not compute forward "+
			"pass: %w", err)
	}

	return &net, nil
}

// Graph returns the computational graph of the policyMLP.
func (e *policyMLP) Graph() *G.ExprGraph {
	return e.g
}

// CloneWithBatch clones a policyMLP onto a new graph with a new input
// batch size.
func (e *policyMLP) CloneWithBatch(batchSize int) (NeuralNet, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("clonewithbatch: batch size must be "+
			"positive\n\thave(%d)", batchSize)
	}

	graph := G.NewGraph()
	input := G.NewMatrix(
		graph,
		tensor.Float64,
		G.WithShape(batchSize, e.features),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	// Copy fully connected layers
	layers := make([]Layer, len(e.layers))
	for i := range e.layers {
		layers[i] = e.layers[i].CloneTo(graph)
	}

	net := policyMLP{
		g:           graph,
		layers:      layers,
		input:       input,
		actions:     e.actions,
		features:    e.features,
		batchSize:   batchSize,
		hiddenSizes: e.hiddenSizes,
		biases:      e.biases,
		activations: e.activations,
	}
	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not compute forward "+
			"pass: %w", err)
	}

	return &net, nil
}

// BatchSize returns the number of observations per forward pass.
func (e *policyMLP) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single observation
// vector that the network takes as input.
func (e *policyMLP) Features() int {
	return e.features
}

// Actions returns the number of logits predicted per observation.
func (e *policyMLP) Actions() int {
	return e.actions
}

// SetInput sets the value of the input node before running the forward
// pass.
func (e *policyMLP) SetInput(input []float64) error {
	if len(input) != e.features*e.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v): %w", e.features*e.batchSize, len(input),
			ErrShapeMismatch)
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Learnables returns the learnable nodes in a policyMLP
func (e *policyMLP) Learnables() G.Nodes {
	// Lazy instantiation
	if e.learnables == nil {
		learnables := make(G.Nodes, 0, 2*len(e.layers))
		for i := range e.layers {
			learnables = append(learnables, e.layers[i].Weights())
			if bias := e.layers[i].Bias(); bias != nil {
				learnables = append(learnables, bias)
			}
		}
		e.learnables = learnables
	}
	return e.learnables
}

// Model returns the learnable nodes with their gradients.
func (e *policyMLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if e.model == nil {
		model := make([]G.ValueGrad, 0, 2*len(e.layers))
		for _, node := range e.Learnables() {
			model = append(model, node)
		}
		e.model = model
	}
	return e.model
}

// fwd performs the forward pass of the policyMLP on the input node
func (e *policyMLP) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %w"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	e.prediction = pred
	G.Read(e.prediction, &e.predVal)

	return pred, nil
}

// Output returns the logits computed by the last virtual machine run.
func (e *policyMLP) Output() G.Value {
	return e.predVal
}

// Prediction returns the node of the computational graph that stores
// the logits.
func (e *policyMLP) Prediction() *G.Node {
	return e.prediction
}
