package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-runner/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [target]",
	Short: "Print the command a target resolves to every time the runner file changes",
	Long: `Watch the runner file and, every time a build rewrites it, print the
command the target would run with outside of the development environment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := watch.NewWatcher(watch.DefaultConfig(a.store.Path()))
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.store.Path(), err)
	}
	defer watcher.Stop()

	name := targetArg(args)
	show := func() {
		commands, err := a.watchCommands(name)
		if err != nil {
			a.logger.Warn("target can't be resolved", "err", err)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), commands)
	}

	a.logger.Info("watching runner file", "path", a.store.Path())
	if a.store.Exists() {
		show()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			a.logger.Debug("runner file changed", "event", event.Type)
			if event.Type == watch.FileEventDeleted {
				a.logger.Warn("runner file removed", "path", event.Path)
				continue
			}
			show()
		case err, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			a.logger.Error("watch error", "err", err)
		}
	}
}

// watchCommands resolves the command that runs the built target. With the
// build tool installed the runner file sits on the project root, so the path
// is resolved like the ready pass of a production run does.
func (a *app) watchCommands(name string) (string, error) {
	return a.runner.Commands(name, true, a.tool.IsInstalled())
}
