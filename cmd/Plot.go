package cmd

import (
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/griddqn/experiment"
	"github.com/samuelfneumann/griddqn/experiment/tracker"
)

// PlotCommand returns the command which plots the learning curve of
// saved episodic returns
func PlotCommand() *cobra.Command {
	var returnsFile, out string
	var window int

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot the learning curve of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			returns, err := tracker.LoadData(returnsFile)
			if err != nil {
				return err
			}
			if err := experiment.PlotReturns(returns, window, out); err != nil {
				return err
			}
			logger.Info().
				Int("episodes", len(returns)).
				Str("out", out).
				Msg("saved learning curve")
			return nil
		},
	}
	cmd.Flags().StringVar(&returnsFile, "returns_file", "returns.bin",
		"File of episodic returns")
	cmd.Flags().StringVar(&out, "out", "returns.png", "Output image")
	cmd.Flags().IntVar(&window, "window", 10, "Moving average window")
	return cmd
}
