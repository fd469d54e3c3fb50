// Package cmd implements the griddqn command line interface
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/samuelfneumann/griddqn/experiment"
	"github.com/samuelfneumann/griddqn/utils/logger"
)

// Flags shared by all commands
var (
	configFile string
	logLevel   string
	logJSON    bool
)

// RootCommand returns the griddqn command and its subcommands
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "griddqn",
		Short: "Train and evaluate deep Q-learning agents on gridworlds",
		// Errors are reported by main
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "",
		"JSON configuration file, overridden by flags")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Log JSON rather than human-readable lines")

	root.AddCommand(
		TrainCommand(),
		HuntCommand(),
		ReinforceCommand(),
		RenderCommand(),
		PlotCommand(),
	)
	return root
}

// newLogger returns the logger of a run, tagged with a new run ID
func newLogger() (zerolog.Logger, error) {
	l, err := logger.New(os.Stderr, logLevel, !logJSON)
	if err != nil {
		return l, err
	}
	l, _ = logger.WithRun(l)
	return l, nil
}

// configFlags binds a flag to each key of an experiment.Config. The
// flags write into c.
func configFlags(fs *pflag.FlagSet, c *experiment.Config) {
	d := experiment.Default()
	*c = d

	fs.IntVar(&c.NumEpisodes, "num_episodes", d.NumEpisodes,
		"Number of episodes to train")
	fs.Float64Var(&c.Gamma, "gamma", d.Gamma, "Discount factor")
	fs.Float64Var(&c.LR, "lr", d.LR, "Learning rate of the solver")
	fs.Float64Var(&c.EpsStart, "eps_start", d.EpsStart,
		"Initial exploration rate")
	fs.Float64Var(&c.EpsEnd, "eps_end", d.EpsEnd, "Final exploration rate")
	fs.Float64Var(&c.EpsDecay, "eps_decay", d.EpsDecay,
		"Decay constant of the exploration rate, in steps")
	fs.IntVar(&c.MemoCapacity, "memo_capacity", d.MemoCapacity,
		"Replay memory capacity")
	fs.StringVar((*string)(&c.Sampler), "sampler", string(d.Sampler),
		"Replay memory sampler (uniform, fifo)")
	fs.IntVar(&c.GridShape, "grid_shape", d.GridShape, "Side of the grid")
	fs.IntVar(&c.BatchSize, "batch_size", d.BatchSize, "Batch size")
	fs.StringVar((*string)(&c.Model), "model", string(d.Model),
		"Model (linear, coord, conv, multiagent, actorcritic)")
	fs.IntVar(&c.HiddenDim, "hidden_dim", d.HiddenDim,
		"Hidden layer width")
	fs.IntVar(&c.Hunters, "hunters", d.Hunters, "Hunters in pursuit")
	fs.StringVar(&c.Solver, "solver", d.Solver,
		"Solver (RMSProp, Adam, Vanilla)")
	fs.Uint64Var(&c.Seed, "seed", d.Seed, "Random seed")
	fs.IntVar(&c.MaxEpisodeSteps, "max_episode_steps", d.MaxEpisodeSteps,
		"Steps after which an episode is cut off")
	fs.IntVar(&c.LogEvery, "log_every", d.LogEvery,
		"Episode steps between loss log entries")
	fs.IntVar(&c.TargetUpdateInterval, "target_update_interval",
		d.TargetUpdateInterval, "Updates between target network updates")
	fs.Float64Var(&c.Tau, "tau", d.Tau, "Polyak constant of target updates")
	fs.StringVar(&c.LossLog, "loss_log", d.LossLog, "Loss log file")
	fs.StringVar(&c.RewardLog, "reward_log", d.RewardLog,
		"Greedy episode reward log file")
	fs.StringVar(&c.ReturnsFile, "returns_file", d.ReturnsFile,
		"File of episodic returns")
	fs.StringVar(&c.LengthsFile, "lengths_file", d.LengthsFile,
		"File of episode lengths, empty for none")
	fs.StringVar(&c.Checkpoint, "checkpoint", d.Checkpoint,
		"Weights file, empty for none")
	fs.IntVar(&c.CheckpointEvery, "checkpoint_every", d.CheckpointEvery,
		"Episodes between numbered checkpoints, 0 for none")
}

// resolveConfig sets c to the configuration file, if any, and then
// re-applies every flag set on the command line
func resolveConfig(fs *pflag.FlagSet, c *experiment.Config) error {
	changed := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	if configFile != "" {
		loaded, err := experiment.LoadFile(configFile)
		if err != nil {
			return err
		}
		*c = loaded
	}

	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}
