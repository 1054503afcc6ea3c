package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	runProduction bool
	runReady      bool
)

var runCmd = &cobra.Command{
	Use:   "run [target]",
	Short: "Print the commands the shell script has to execute",
	Long: `Print the commands needed to run a target, separated by ';'.

Without the build tool, the target is read from the runner file. With it, a
development run is delegated to the build tool and a production run prints a
production build followed by a second call to this command with --ready.

This command is called by the runner shell script, which evaluates the output.
Run validate first: errors can't be reported through the evaluated output.`,
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	RunE:   runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&runProduction, "production", "p", false, "Use a production build even if the build tool is present")
	runCmd.Flags().BoolVarP(&runReady, "ready", "r", false, "Private flag: the production build finished and the runner file is up to date")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	commands, err := a.runner.Commands(targetArg(args), runProduction, runReady)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), commands)
	return nil
}
