// Package environment outlines the interfaces needed to implement concrete
// environments for episodic reinforcement learning.
package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Environment implements a simulated environment with a discrete action
// set. An Environment is consumed through exactly two operations: Reset,
// which starts a new episode and discards any prior one, and Step, which
// advances the current episode by one transition.
//
// Calling Step after an episode has ended, without an intervening Reset,
// is undefined behaviour and must not be relied upon.
type Environment interface {
	// Reset starts a new episode and returns its first observation.
	// Reset is deterministic given a fixed seed at construction.
	Reset() (mat.Vector, error)

	// Step advances the episode by taking the given action. It returns
	// the next observation, the reward for the transition, and whether
	// the episode has ended.
	Step(action int) (mat.Vector, float64, bool, error)

	// ObservationSize returns the number of features in an observation.
	ObservationSize() int

	// NumActions returns the size of the discrete action set. Legal
	// actions are the zero-based indices [0, NumActions).
	NumActions() int
}

// Starter implements a distribution of starting states and samples
// starting states for environments.
type Starter interface {
	Start() mat.Vector
}

// Error describes a fatal failure of the backing simulator, such as a
// crash or an illegal action. Environment errors are never retried: the
// simulator state is assumed corrupted, so the caller must abort the run.
type Error struct {
	Op  string // the failing operation, e.g. "reset" or "step"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("environment: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
