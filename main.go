package main

import (
	"fmt"
	"log"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r1"
	G "gorgonia.org/gorgonia"

	"polgrad/environment"
	"polgrad/environment/cartpole"
	"polgrad/experiment"
	"polgrad/experiment/tracker"
	"polgrad/network"
	"polgrad/reinforce"
	"polgrad/solver"
)

// rootCommand builds the command line argument parser. The defaults
// train cartpole with a single 32-unit tanh hidden layer and Adam,
// collecting at least 5000 steps per epoch for 50 epochs.
func rootCommand() *cobra.Command {
	var epochs int
	var minBatch int
	var maxBatchSteps int
	var maxEpisodeSteps int
	var hidden []int
	var lr float64
	var solverType string
	var seed uint64
	var dataFile string
	var plotFile string

	cmd := &cobra.Command{
		Use:   "polgrad",
		Short: "Train a cartpole policy with reward-to-go policy gradients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return train(epochs, minBatch, maxBatchSteps, maxEpisodeSteps,
				hidden, lr, solverType, seed, dataFile, plotFile)
		},
	}

	cmd.Flags().IntVar(&epochs, "epochs", 50, "Number of training epochs")
	cmd.Flags().IntVar(&minBatch, "min-batch", 5000,
		"Minimum steps collected per epoch (episodes always run to completion)")
	cmd.Flags().IntVar(&maxBatchSteps, "max-batch-steps", 0,
		"Cap on steps collected per epoch, failing the run when exceeded "+
			"(0 = default cap, negative = unbounded)")
	cmd.Flags().IntVar(&maxEpisodeSteps, "max-episode-steps",
		cartpole.DefaultMaxSteps, "Episode step cutoff")
	cmd.Flags().IntSliceVar(&hidden, "hidden", []int{32},
		"Hidden layer widths of the policy network")
	cmd.Flags().Float64Var(&lr, "lr", 1e-2, "Solver learning rate")
	cmd.Flags().StringVar(&solverType, "solver", "adam",
		"Solver updating the policy parameters (adam or vanilla)")
	cmd.Flags().Uint64Var(&seed, "seed", 42,
		"Seed for the environment and action sampler")
	cmd.Flags().StringVar(&dataFile, "data-file", "",
		"File to save per-epoch average rewards to (gob encoded)")
	cmd.Flags().StringVar(&plotFile, "plot-file", "",
		"File to render the learning curve to (.png, .pdf, .svg)")

	return cmd
}

func train(epochs, minBatch, maxBatchSteps, maxEpisodeSteps int,
	hidden []int, lr float64, solverType string, seed uint64,
	dataFile, plotFile string) error {

	bound := r1.Interval{Min: -cartpole.StartBound, Max: cartpole.StartBound}
	starter := environment.NewUniformStarter([]r1.Interval{
		bound,
		bound,
		bound,
		bound,
	}, seed)

	env, err := cartpole.New(starter, maxEpisodeSteps)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	var sol *solver.Solver
	switch solverType {
	case "adam":
		sol, err = solver.NewDefaultAdam(lr, 1)
	case "vanilla":
		sol, err = solver.NewVanilla(lr, 1)
	default:
		return fmt.Errorf("train: unknown solver %q", solverType)
	}
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	biases := make([]bool, len(hidden))
	activations := make([]*network.Activation, len(hidden))
	for i := range hidden {
		biases[i] = true
		activations[i] = network.TanH()
	}

	agent, err := reinforce.New(env, reinforce.Config{
		HiddenSizes:   hidden,
		Biases:        biases,
		Activations:   activations,
		InitWFn:       G.GlorotN(math.Sqrt(2.0)),
		Solver:        sol,
		Seed:          seed,
		MaxBatchSteps: maxBatchSteps,
	})
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	e := experiment.New(agent, epochs, minBatch)
	if dataFile != "" {
		e.Register(tracker.NewReturn(dataFile))
	}
	if plotFile != "" {
		e.Register(tracker.NewLearningCurve(plotFile))
	}

	if err := e.Run(); err != nil {
		return fmt.Errorf("train: %w", err)
	}
	return e.Save()
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
