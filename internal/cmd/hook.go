package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-runner/internal/host"
)

var hookCmd = &cobra.Command{
	Use:    "hook",
	Short:  "Build tool lifecycle hooks",
	Hidden: true,
	Long: `Hooks the build tool calls while building. Each one reads a JSON payload
from stdin and writes the updated value as JSON to stdout.`,
}

var hookBuildCommandsCmd = &cobra.Command{
	Use:   "build-commands",
	Short: "Save a target on the runner file before it's built",
	Long: `Reads {"commands": [...], "target": {...}, "type": "...", "version": "...",
"directory": "...", "unknownOptions": {...}} and writes the list of commands
the build tool should run.`,
	Args: cobra.NoArgs,
	RunE: runHookBuildCommands,
}

var hookCopyFilesCmd = &cobra.Command{
	Use:   "copy-files",
	Short: "Add the runner file to the files copied to the distribution directory",
	Args:  cobra.NoArgs,
	RunE:  runHookCopyFiles,
}

var hookRevisionCmd = &cobra.Command{
	Use:   "revision <version>",
	Short: "Stamp a new project version on the runner file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHookRevision,
}

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.AddCommand(hookBuildCommandsCmd)
	hookCmd.AddCommand(hookCopyFilesCmd)
	hookCmd.AddCommand(hookRevisionCmd)
}

// loadHooks creates the app and registers the plugin on a new set of hooks.
func loadHooks() (*app, *host.Hooks, error) {
	a, err := loadApp()
	if err != nil {
		return nil, nil, err
	}

	hooks := host.NewHooks()
	a.plugin().Register(hooks)
	return a, hooks, nil
}

func runHookBuildCommands(cmd *cobra.Command, args []string) error {
	_, hooks, err := loadHooks()
	if err != nil {
		return err
	}

	var payload host.BuildCommandsPayload
	if err := decodePayload(cmd.InOrStdin(), &payload); err != nil {
		return err
	}

	commands, err := hooks.BuildCommands(payload)
	if err != nil {
		return err
	}
	if commands == nil {
		commands = []string{}
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(commands)
}

func runHookCopyFiles(cmd *cobra.Command, args []string) error {
	_, hooks, err := loadHooks()
	if err != nil {
		return err
	}

	var files []string
	if err := decodePayload(cmd.InOrStdin(), &files); err != nil {
		return err
	}

	files, err = hooks.FilesToCopy(files)
	if err != nil {
		return err
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(files)
}

func runHookRevision(cmd *cobra.Command, args []string) error {
	a, hooks, err := loadHooks()
	if err != nil {
		return err
	}

	if err := hooks.Revision(args[0]); err != nil {
		return err
	}

	a.logger.Info("runner file version updated", "version", args[0])
	return nil
}

func decodePayload(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to parse hook payload: %w", err)
	}
	return nil
}
