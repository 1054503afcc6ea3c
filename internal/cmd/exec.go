package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-runner/internal/shell"
)

var execProduction bool

var execCmd = &cobra.Command{
	Use:   "exec [target]",
	Short: "Validate, resolve and run a target",
	Long: `Run a target without a shell script: the target is validated, resolved to
commands like 'run' would, and the commands are executed from the project
directory.

A production run with the build tool builds the target first, then reads the
updated runner file and starts the target.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().BoolVarP(&execProduction, "production", "p", false, "Use a production build even if the build tool is present")
}

func runExec(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	name := targetArg(args)
	if err := a.store.Validate(a.tool.IsInstalled()); err != nil {
		return err
	}
	if err := a.registry.Validate(name); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executor := shell.NewExecutor(a.projectDir, a.logger)
	executor.Stdout = cmd.OutOrStdout()
	executor.Stderr = cmd.ErrOrStderr()

	if a.tool.IsInstalled() && execProduction {
		build, err := a.runner.BuildCommand(name)
		if err != nil {
			return err
		}
		if err := executor.Run(ctx, build); err != nil {
			return err
		}
		return runResolved(ctx, executor, a, name, true, true)
	}

	return runResolved(ctx, executor, a, name, execProduction, false)
}

func runResolved(ctx context.Context, executor *shell.Executor, a *app, name string, production, ready bool) error {
	commands, err := a.runner.Commands(name, production, ready)
	if err != nil {
		return err
	}

	a.logger.Debug("executing", "commands", commands)
	return executor.Run(ctx, commands)
}
