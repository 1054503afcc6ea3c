package cmd

import (
	"github.com/spf13/cobra"
)

var (
	validateProduction bool
	validateReady      bool
	validateStrict     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [target]",
	Short: "Validate the arguments before the shell script runs a target",
	Long: `Check that a target can be run: without the build tool, the runner file
must exist, the target must be on it and its executable must be on disk.

The runner shell script calls this before run, because run's output is
evaluated and can't carry errors. It takes the same flags as run so the
script can forward them untouched; --production and --ready don't change
what is checked.`,
	Args:   cobra.MaximumNArgs(1),
	Hidden: true,
	RunE:   runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVarP(&validateProduction, "production", "p", false, "Accepted so the shell script can pass the same flags as run; ignored")
	validateCmd.Flags().BoolVarP(&validateReady, "ready", "r", false, "Accepted so the shell script can pass the same flags as run; ignored")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Also check the runner file against its JSON schema")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if err := a.store.Validate(a.tool.IsInstalled()); err != nil {
		return err
	}

	if err := a.registry.Validate(targetArg(args)); err != nil {
		return err
	}

	if validateStrict && a.store.Exists() {
		if err := a.store.CheckSchema(); err != nil {
			return err
		}
	}

	a.logger.Debug("target is valid", "target", targetArg(args))
	return nil
}
