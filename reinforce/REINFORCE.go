// Package reinforce implements the REINFORCE (vanilla policy gradient)
// algorithm with reward-to-go returns. This implementation is adapted
// from:
//
// https://spinningup.openai.com/en/latest/spinningup/rl_intro3.html
// https://github.com/openai/spinningup/blob/master/spinup/examples/pg_math/2_rtg_pg.py
package reinforce

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"polgrad/environment"
	"polgrad/network"
	"polgrad/policy"
	"polgrad/solver"
	"polgrad/trajectory"
)

// REINFORCE holds a training session: a behaviour policy used to collect
// rollouts and the solver that updates its parameters. The policy
// parameters and the solver's internal accumulators are the only state
// persisting across epochs; each collected batch is owned by a single
// epoch and discarded after the update step.
//
// The behaviour network has batch size 1 and is run without gradient
// bookkeeping during rollouts. Each update clones the architecture at the
// collected batch size, copies the current weights in, builds the
// policy-gradient loss on the clone's graph, takes one solver step, and
// copies the updated weights back. The clone's graph is discarded with
// its batch, so inference never pays for an unused differentiation graph
// and the loss graph always matches the batch it scores.
type REINFORCE struct {
	env           environment.Environment
	behaviour     *policy.Categorical
	solver        *solver.Solver
	maxBatchSteps int
}

// New creates and returns a new REINFORCE agent acting in env.
func New(env environment.Environment, c Config) (*REINFORCE, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	features := env.ObservationSize()
	actions := env.NumActions()
	if features < 1 || actions < 2 {
		return nil, fmt.Errorf("new: environment with %d observation "+
			"features and %d actions: %w", features, actions,
			network.ErrShapeMismatch)
	}

	net, err := network.NewPolicyMLP(features, 1, actions, G.NewGraph(),
		c.HiddenSizes, c.Biases, c.InitWFn, c.Activations)
	if err != nil {
		return nil, fmt.Errorf("new: could not create policy network: %w", err)
	}

	behaviour, err := policy.NewCategorical(net, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("new: could not create action sampler: %w", err)
	}

	return &REINFORCE{
		env:           env,
		behaviour:     behaviour,
		solver:        c.Solver,
		maxBatchSteps: c.maxBatchSteps(),
	}, nil
}

// Policy returns the agent's behaviour policy.
func (r *REINFORCE) Policy() *policy.Categorical {
	return r.behaviour
}

// Collect performs rollouts with the current policy until at least
// minBatchSize steps spanning complete episodes have been recorded.
//
// minBatchSize is a lower bound, not a cap: collection never stops
// mid-episode, so the final episode runs to termination even when that
// overshoots the bound, and minBatchSize <= 0 still collects one complete
// episode. Environment failures abort collection immediately.
func (r *REINFORCE) Collect(minBatchSize int) (trajectory.Batch, error) {
	obs, err := r.env.Reset()
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	if obs.Len() != r.behaviour.Network().Features() {
		return nil, fmt.Errorf("collect: environment produced %d "+
			"observation features, network takes %d: %w", obs.Len(),
			r.behaviour.Network().Features(), network.ErrShapeMismatch)
	}

	batch := make(trajectory.Batch, 0, max(minBatchSize, 0))
	for {
		if r.maxBatchSteps > 0 && len(batch) >= r.maxBatchSteps {
			return nil, &environment.Error{
				Op: "step",
				Err: fmt.Errorf("collected %d steps without reaching %d "+
					"steps of complete episodes", len(batch), minBatchSize),
			}
		}

		action, err := r.behaviour.SelectAction(obs)
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}

		next, reward, done, err := r.env.Step(action)
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}

		// The recorded observation is the state the action was
		// selected from, not the post-step state.
		batch = append(batch, trajectory.Step{
			Obs:    obs,
			Action: action,
			Reward: reward,
			Done:   done,
		})

		if !done {
			obs = next
			continue
		}

		// The stopping check happens only at episode boundaries.
		if len(batch) >= minBatchSize {
			return batch, nil
		}
		if obs, err = r.env.Reset(); err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
	}
}

// Update performs one policy-gradient step on the collected batch and
// returns the scalar loss. The loss is the negative mean over the batch
// of the log-probability of each taken action weighted by its
// reward-to-go, so the update increases the probability of actions that
// led to high future reward within their episode and decreases it for
// actions that led to low future reward.
func (r *REINFORCE) Update(batch trajectory.Batch) (float64, error) {
	n := len(batch)
	if n == 0 {
		return 0, fmt.Errorf("update: empty batch")
	}

	net := r.behaviour.Network()
	features := net.Features()
	actions := net.Actions()

	train, err := net.CloneWithBatch(n)
	if err != nil {
		return 0, fmt.Errorf("update: could not clone policy network: %w", err)
	}
	if err := network.Set(train, net); err != nil {
		return 0, fmt.Errorf("update: %w", err)
	}

	g := train.Graph()
	logits := train.Prediction()

	mask := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(n, actions),
		G.WithName("action mask"),
	)
	rewardToGo := G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(n),
		G.WithName("reward-to-go"),
	)

	// Per-step log probability of the taken action: select the taken
	// action's logit with the one-hot mask and normalize by the
	// log-sum-exp of the row.
	takenLogits := G.Must(G.Sum(G.Must(G.HadamardProd(mask, logits)), 1))
	logProb := G.Must(G.Sub(takenLogits, logSumExp(logits, 1)))

	loss := G.Must(G.HadamardProd(logProb, rewardToGo))
	loss = G.Must(G.Mean(loss))
	loss = G.Must(G.Neg(loss))

	var lossVal G.Value
	G.Read(loss, &lossVal)

	if _, err := G.Grad(loss, train.Learnables()...); err != nil {
		return 0, fmt.Errorf("update: could not construct gradient: %w", err)
	}

	if err := train.SetInput(batch.Observations(features)); err != nil {
		return 0, fmt.Errorf("update: %w", err)
	}
	maskTensor := tensor.NewDense(
		tensor.Float64,
		[]int{n, actions},
		tensor.WithBacking(batch.ActionMask(actions)),
	)
	if err := G.Let(mask, maskTensor); err != nil {
		return 0, fmt.Errorf("update: could not set action mask: %w", err)
	}
	rtgTensor := tensor.NewDense(
		tensor.Float64,
		[]int{n},
		tensor.WithBacking(batch.RewardToGo()),
	)
	if err := G.Let(rewardToGo, rtgTensor); err != nil {
		return 0, fmt.Errorf("update: could not set reward-to-go: %w", err)
	}

	vm := G.NewTapeMachine(g, G.BindDualValues(train.Learnables()...))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return 0, fmt.Errorf("update: could not run policy gradient "+
			"step: %w", err)
	}

	lossValue := lossVal.Data().(float64)
	if math.IsNaN(lossValue) || math.IsInf(lossValue, 0) {
		return 0, fmt.Errorf("update: non-finite loss %v: %w", lossValue,
			network.ErrNumericInstability)
	}

	if err := r.solver.Step(train.Model()); err != nil {
		return 0, fmt.Errorf("update: could not apply solver step: %w", err)
	}

	if err := network.Set(net, train); err != nil {
		return 0, fmt.Errorf("update: %w", err)
	}

	return lossValue, nil
}

// logSumExp computes log(sum(exp(logits))) along the given axis, with
// the row maximum subtracted before exponentiation for numerical
// stability.
func logSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}
