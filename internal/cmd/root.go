package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// version is the runner version, stamped on the runner file. Overridden at
// build time with -ldflags "-X github.com/dosanma1/forge-runner/internal/cmd.version=..."
var version = "1.0.0"

var (
	rootConfigPath string
	rootProjectDir string
	rootBasePath   string
	rootVerbose    bool
	rootStandalone bool
)

var rootCmd = &cobra.Command{
	Use:   "forge-runner",
	Short: "Forge Runner - run built targets with or without the build tool",
	Long: `Forge Runner records where production builds leave each target's executable,
so the target can be started later even where the build tool is not installed,
like a production container.

The run and validate commands are meant to be called by the runner shell script,
which executes whatever run prints.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to the configuration file (default: <dir>/.forge-runner.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootProjectDir, "dir", "d", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&rootBasePath, "base-path", "", "Directory executables are resolved from")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Show debug output on stderr")
	rootCmd.PersistentFlags().BoolVar(&rootStandalone, "standalone", false, "Behave as if the build tool was not installed")
}

// newLogger writes to stderr: stdout belongs to the shell evaluating the
// commands.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "forge-runner",
	})
	if rootVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
