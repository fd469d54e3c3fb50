package cmd

import (
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/griddqn/experiment"
)

// RenderCommand returns the command which renders one greedy episode
// of checkpointed weights
func RenderCommand() *cobra.Command {
	var c experiment.Config
	var run runFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a greedy episode of checkpointed weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(cmd.Flags(), &c); err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}

			reward, err := experiment.Render(c, run.options(), logger)
			if err != nil {
				return err
			}
			logger.Info().Float64("return", reward).Msg("greedy episode")
			return nil
		},
	}
	configFlags(cmd.Flags(), &c)
	run.bind(cmd)
	return cmd
}
