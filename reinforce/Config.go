package reinforce

import (
	"fmt"

	G "gorgonia.org/gorgonia"

	"polgrad/network"
	"polgrad/solver"
)

// DefaultMaxBatchSteps bounds rollout collection when no explicit cap is
// configured. Collection only stops at episode boundaries, so a
// pathological environment that never terminates would otherwise hang
// the system; exceeding the cap is treated as an environment failure.
const DefaultMaxBatchSteps = 100_000

// Config describes a REINFORCE agent.
type Config struct {
	// Policy network layout. For index i, HiddenSizes[i] is the number
	// of units in hidden layer i, Biases[i] denotes whether that layer
	// has a bias unit, and Activations[i] is its activation function.
	HiddenSizes []int
	Biases      []bool
	Activations []*network.Activation

	// InitWFn determines the weight initialization scheme. Any finite
	// deterministic-given-seed scheme is acceptable.
	InitWFn G.InitWFn

	// Solver applies gradient updates to the policy parameters.
	Solver *solver.Solver

	// Seed for the action sampler's random stream.
	Seed uint64

	// MaxBatchSteps bounds the total number of steps collected into a
	// single batch. Zero selects DefaultMaxBatchSteps; a negative value
	// disables the bound so that collection runs until an episode ends
	// past the minimum batch size, however long that takes.
	MaxBatchSteps int
}

// Validate checks a Config to ensure it is a valid configuration.
func (c Config) Validate() error {
	if len(c.HiddenSizes) != len(c.Biases) {
		return fmt.Errorf("invalid number of biases\n\twant(%d)\n\thave(%d)",
			len(c.HiddenSizes), len(c.Biases))
	}
	if len(c.HiddenSizes) != len(c.Activations) {
		return fmt.Errorf("invalid number of activations\n\twant(%d)"+
			"\n\thave(%d)", len(c.HiddenSizes), len(c.Activations))
	}
	if c.InitWFn == nil {
		return fmt.Errorf("no weight initialization scheme given")
	}
	if c.Solver == nil {
		return fmt.Errorf("no solver given")
	}
	return nil
}

// maxBatchSteps resolves the configured collection bound.
func (c Config) maxBatchSteps() int {
	if c.MaxBatchSteps == 0 {
		return DefaultMaxBatchSteps
	}
	if c.MaxBatchSteps < 0 {
		return 0
	}
	return c.MaxBatchSteps
}
