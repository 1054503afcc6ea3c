package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-runner/internal/config"
	"github.com/dosanma1/forge-runner/internal/ui"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Write a ` + config.FileName + ` file with the default settings to the
project directory. An existing file is only replaced after confirmation, or
with --force, and a copy is kept with a .bak extension.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	projectDir, err := resolveProjectDir(rootProjectDir)
	if err != nil {
		return err
	}

	path := rootConfigPath
	if path == "" {
		path = filepath.Join(projectDir, config.FileName)
	}

	cfg := config.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if !initForce {
			ok, err := ui.AskConfirm(fmt.Sprintf("%s already exists. Overwrite it", path))
			if err != nil {
				return err
			}
			if !ok {
				logger.Info("configuration left untouched", "path", path)
				return nil
			}
		}
		if err := cfg.SaveWithBackup(path); err != nil {
			return err
		}
		logger.Info("configuration replaced", "path", path, "backup", path+".bak")
		return nil
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	logger.Info("configuration created", "path", path)
	return nil
}
