package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dosanma1/forge-runner/internal/runnerfile"
	"github.com/dosanma1/forge-runner/internal/targets"
	"github.com/dosanma1/forge-runner/internal/ui"
)

var targetsPick bool

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the targets on the runner file",
	Long: `List the targets saved on the runner file, with the executable each one
resolves to. The default target is marked with '*'.

With --pick, choose a target interactively and print its name.`,
	Args: cobra.NoArgs,
	RunE: runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.Flags().BoolVar(&targetsPick, "pick", false, "Select a target and print its name")
}

func runTargets(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	list, err := a.registry.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return targets.ErrNoTargets
	}

	defaultName := ""
	if target, err := a.registry.Default(); err == nil {
		defaultName = target.Name
	}

	if targetsPick {
		return pickTarget(cmd, list)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTargets(list, defaultName))
	return nil
}

func pickTarget(cmd *cobra.Command, list []runnerfile.Target) error {
	names := make([]string, 0, len(list))
	for _, target := range list {
		names = append(names, target.Name)
	}

	_, name, err := ui.AskSelect("Select a target", names)
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}

func renderTargets(list []runnerfile.Target, defaultName string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TARGET", "RUN WITH", "EXECUTABLE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, target := range list {
		name := target.Name
		if name == defaultName {
			name += " *"
		}
		t.Row(name, target.RunWith(), target.Exec)
	}

	return t.String()
}
