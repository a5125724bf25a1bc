// Package cartpole implements the Cartpole classic control environment.
package cartpole

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "polgrad/environment"
)

const (
	// Physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	TotalMass      float64 = CartMass + PoleMass
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceMag       float64 = 10.0 // magnitude of force applied to the cart
	Dt             float64 = 0.02 // seconds between state updates

	// Episode failure thresholds
	PositionThreshold float64 = 2.4
	AngleThreshold    float64 = 12.0 * math.Pi / 180.0

	// Default bound on episode length
	DefaultMaxSteps int = 200

	// Default half-width of the uniform start-state distribution
	StartBound float64 = 0.05

	// Observation layout
	ObservationSize int = 4 // x, x', theta, theta'
	NumActions      int = 2 // push left, push right
)

// Cartpole implements the classic control environment in which a pole is
// attached to a cart moving along a frictionless track. The agent must
// keep the pole balanced for as long as possible.
//
// The observation is a 4-vector of the cart position and velocity and the
// pole angle (radians, from the upright) and angular velocity. Actions
// are discrete:
//
//	Action	Meaning
//	  0		Push cart to the left
//	  1		Push cart to the right
//
// Every step, including the terminal one, yields a reward of 1. An
// episode ends when the cart leaves [-2.4, 2.4], the pole falls more than
// 12 degrees from the upright, or maxSteps steps have elapsed.
type Cartpole struct {
	env.Starter
	state    *mat.VecDense
	steps    int
	maxSteps int
}

// New constructs a Cartpole drawing start states from starter. An episode
// is cut off after maxSteps steps; maxSteps <= 0 selects DefaultMaxSteps.
// The first episode is started, so the environment is ready to Step.
func New(starter env.Starter, maxSteps int) (*Cartpole, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	c := &Cartpole{Starter: starter, maxSteps: maxSteps}
	if _, err := c.Reset(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return c, nil
}

// NewDefault constructs a Cartpole with the canonical uniform
// [-0.05, 0.05] start-state distribution and the default episode cutoff.
func NewDefault(seed uint64) (*Cartpole, error) {
	bounds := r1.Interval{Min: -StartBound, Max: StartBound}
	starter := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	return New(starter, DefaultMaxSteps)
}

// Reset starts a new episode and returns its first observation.
func (c *Cartpole) Reset() (mat.Vector, error) {
	start := c.Start()
	if start.Len() != ObservationSize {
		return nil, &env.Error{
			Op: "reset",
			Err: fmt.Errorf("starter produced %d state features, need %d",
				start.Len(), ObservationSize),
		}
	}

	state := mat.NewVecDense(ObservationSize, nil)
	state.CopyVec(start)
	if err := validateState(state); err != nil {
		return nil, &env.Error{Op: "reset", Err: err}
	}

	c.state = state
	c.steps = 0
	return c.observation(), nil
}

// Step advances the episode by one transition using Euler kinematic
// integration of the cart-pole dynamics.
func (c *Cartpole) Step(action int) (mat.Vector, float64, bool, error) {
	if action < 0 || action >= NumActions {
		return nil, 0, false, &env.Error{
			Op:  "step",
			Err: fmt.Errorf("illegal action %d ∉ [0, %d)", action, NumActions),
		}
	}

	x, xDot := c.state.AtVec(0), c.state.AtVec(1)
	th, thDot := c.state.AtVec(2), c.state.AtVec(3)

	force := ForceMag
	if action == 0 {
		force = -ForceMag
	}

	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)

	poleMassLength := PoleMass * HalfPoleLength
	temp := (force + poleMassLength*thDot*thDot*sinTheta) / TotalMass
	thAcc := (Gravity*sinTheta - cosTheta*temp) / (HalfPoleLength *
		(4.0/3.0 - PoleMass*cosTheta*cosTheta/TotalMass))
	xAcc := temp - poleMassLength*thAcc*cosTheta/TotalMass

	x += Dt * xDot
	xDot += Dt * xAcc
	th += Dt * thDot
	thDot += Dt * thAcc

	c.state = mat.NewVecDense(ObservationSize, []float64{x, xDot, th, thDot})
	c.steps++

	failed := x < -PositionThreshold || x > PositionThreshold ||
		th < -AngleThreshold || th > AngleThreshold
	done := failed || c.steps >= c.maxSteps

	return c.observation(), 1.0, done, nil
}

// ObservationSize returns the number of state features.
func (c *Cartpole) ObservationSize() int { return ObservationSize }

// NumActions returns the size of the discrete action set.
func (c *Cartpole) NumActions() int { return NumActions }

// MaxSteps returns the episode step cutoff.
func (c *Cartpole) MaxSteps() int { return c.maxSteps }

// observation returns a copy of the current state, so that callers own
// their observations and later physics updates cannot mutate them.
func (c *Cartpole) observation() mat.Vector {
	obs := mat.NewVecDense(ObservationSize, nil)
	obs.CopyVec(c.state)
	return obs
}

// validateState ensures a start state is within the failure thresholds,
// otherwise the first step of every episode would be terminal.
func validateState(state mat.Vector) error {
	x, th := state.AtVec(0), state.AtVec(2)
	if x < -PositionThreshold || x > PositionThreshold {
		return fmt.Errorf("start position %v outside (-%v, %v)", x,
			PositionThreshold, PositionThreshold)
	}
	if th < -AngleThreshold || th > AngleThreshold {
		return fmt.Errorf("start angle %v outside (-%v, %v)", th,
			AngleThreshold, AngleThreshold)
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (c *Cartpole) String() string {
	msg := "Cartpole  |  Position: %v  |  Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	return fmt.Sprintf(msg, c.state.AtVec(0), c.state.AtVec(1),
		c.state.AtVec(2), c.state.AtVec(3))
}
