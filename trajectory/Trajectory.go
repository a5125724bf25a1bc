// Package trajectory implements the transition records collected from
// agent-environment interaction.
package trajectory

import (
	"gonum.org/v1/gonum/mat"
)

// Step is a single transition of the agent-environment interaction. Obs
// is the observation the action was selected from, that is, the state
// before acting. Done is true if and only if the step is the last of its
// episode.
type Step struct {
	Obs    mat.Vector
	Action int
	Reward float64
	Done   bool
}

// Batch is an ordered sequence of Steps spanning one or more complete
// episodes. Order encodes time; episode boundaries are encoded by the
// Done flags. A well-formed Batch always ends on an episode boundary.
type Batch []Step

// RewardToGo returns, for every step, the sum of its own reward and all
// rewards of later steps in the same episode. The result is aligned with
// the batch; raw rewards are left untouched so that they remain available
// for reporting after the transform.
//
// The batch is processed in reverse time order with a running
// accumulator. A Done step is the last of its episode, so the accumulator
// is zeroed before that step's reward is added: rewards never leak across
// episode boundaries.
func (b Batch) RewardToGo() []float64 {
	rtg := make([]float64, len(b))

	acc := 0.0
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Done {
			acc = 0.0
		}
		acc += b[i].Reward
		rtg[i] = acc
	}
	return rtg
}

// Episodes returns the number of completed episodes in the batch.
func (b Batch) Episodes() int {
	episodes := 0
	for i := range b {
		if b[i].Done {
			episodes++
		}
	}
	return episodes
}

// TotalReward returns the sum of the raw rewards in the batch.
func (b Batch) TotalReward() float64 {
	total := 0.0
	for i := range b {
		total += b[i].Reward
	}
	return total
}

// Observations returns the row-major flattening of the batch's
// observation vectors, one row of length features per step, in the form
// a network input node consumes.
func (b Batch) Observations(features int) []float64 {
	obs := make([]float64, 0, len(b)*features)
	for i := range b {
		for j := 0; j < features; j++ {
			obs = append(obs, b[i].Obs.AtVec(j))
		}
	}
	return obs
}

// ActionMask returns the len(b) x actions one-hot matrix of taken
// actions in row-major order: row i holds a single 1 at the column equal
// to step i's recorded action.
func (b Batch) ActionMask(actions int) []float64 {
	mask := make([]float64, len(b)*actions)
	for i := range b {
		mask[i*actions+b[i].Action] = 1.0
	}
	return mask
}
