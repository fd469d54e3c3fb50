package cmd

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/griddqn/experiment"
)

// runFlags configure the outputs of a run
type runFlags struct {
	progress bool
	render   bool
	animate  bool
	delay    time.Duration
}

func (r *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&r.progress, "progress", true,
		"Show a progress bar over episodes")
	cmd.Flags().BoolVar(&r.render, "render", true,
		"Render the greedy episode")
	cmd.Flags().BoolVar(&r.animate, "animate", true,
		"Redraw frames in place rather than printing each")
	cmd.Flags().DurationVar(&r.delay, "delay", 250*time.Millisecond,
		"Delay between rendered frames")
}

func (r *runFlags) options() experiment.Options {
	var progress io.Writer
	if r.progress {
		progress = os.Stdout
	}
	return experiment.Options{
		Out:      os.Stdout,
		Progress: progress,
		Frames: experiment.Frames{
			Render:  r.render,
			Animate: r.animate,
			Delay:   r.delay,
		},
	}
}

// trainCommand returns a command which trains with the model forced
// to model, or the configured model if model is empty
func trainCommand(use, short string, model experiment.Model) *cobra.Command {
	var c experiment.Config
	var run runFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(cmd.Flags(), &c); err != nil {
				return err
			}
			if model != "" {
				c.Model = model
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}
			_, err = experiment.Train(c, run.options(), logger)
			return err
		},
	}
	configFlags(cmd.Flags(), &c)
	run.bind(cmd)
	return cmd
}

// TrainCommand returns the command which trains a DQN agent on cliff
// walking
func TrainCommand() *cobra.Command {
	return trainCommand("train", "Train an agent on the configured gridworld",
		"")
}

// HuntCommand returns the command which trains hunters on pursuit
func HuntCommand() *cobra.Command {
	return trainCommand("hunt",
		"Train multi-agent DQN hunters on the pursuit gridworld",
		experiment.MultiAgent)
}

// ReinforceCommand returns the command which trains the actor-critic
// policy on cliff walking
func ReinforceCommand() *cobra.Command {
	return trainCommand("reinforce",
		"Train an actor-critic policy with REINFORCE on cliff walking",
		experiment.ActorCritic)
}
