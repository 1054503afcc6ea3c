// Package host is the boundary with the host build tool: it knows whether the
// tool is installed and how to write the commands that make it build or run
// a target.
package host

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrHostToolUnavailable is returned when a build command is requested and
// the host build tool is not installed.
var ErrHostToolUnavailable = errors.New("can't generate a build command if the build tool is not installed")

// Build types understood by the host build tool.
const (
	BuildTypeDevelopment = "development"
	BuildTypeProduction  = "production"
)

// Defaults for the CLI adapter.
const (
	DefaultBinary     = "projext"
	DefaultPluginName = "forge-runner"
	pluginFlag        = "plugin"
)

// BuildArgs are the arguments of a host build command.
type BuildArgs struct {
	Target string
	Type   string
	Run    bool
	// Extra flags forwarded as --key value, sorted by key.
	Extra map[string]string
}

// Tool is what the runner needs from the host build tool.
type Tool interface {
	// IsInstalled reports whether the host build tool is available.
	IsInstalled() bool
	// BuildCommand returns the shell command that builds (and optionally runs)
	// a target, prefixed with the given environment variables.
	BuildCommand(args BuildArgs, env string) (string, error)
	// BuildCommandsForTargets returns one build command per target. Any
	// target set on args is ignored.
	BuildCommandsForTargets(targets []string, args BuildArgs, env string) ([]string, error)
}

// CLI generates commands for a host build tool invoked through its binary.
type CLI struct {
	binary     string
	pluginName string
	installed  bool
	logger     *log.Logger
}

// NewCLI creates the adapter and detects once whether binary is on the PATH.
func NewCLI(binary, pluginName string, logger *log.Logger) *CLI {
	if binary == "" {
		binary = DefaultBinary
	}
	if pluginName == "" {
		pluginName = DefaultPluginName
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	_, err := exec.LookPath(binary)
	installed := err == nil
	logger.Debug("host build tool detection", "binary", binary, "installed", installed)

	return &CLI{
		binary:     binary,
		pluginName: pluginName,
		installed:  installed,
		logger:     logger,
	}
}

// IsInstalled reports whether the host binary was found.
func (c *CLI) IsInstalled() bool {
	return c.installed
}

// BuildCommand renders a host build command.
func (c *CLI) BuildCommand(args BuildArgs, env string) (string, error) {
	if !c.installed {
		return "", ErrHostToolUnavailable
	}
	return renderBuildCommand(c.binary, c.pluginName, args, env), nil
}

// BuildCommandsForTargets renders a build command for each target.
func (c *CLI) BuildCommandsForTargets(targets []string, args BuildArgs, env string) ([]string, error) {
	return buildCommandsForTargets(c, targets, args, env)
}

// Static is a Tool with a fixed installation state. It renders the same
// commands as CLI without looking for the binary.
type Static struct {
	Installed  bool
	Binary     string
	PluginName string
}

// IsInstalled returns the fixed state.
func (s *Static) IsInstalled() bool {
	return s.Installed
}

// BuildCommand renders a host build command.
func (s *Static) BuildCommand(args BuildArgs, env string) (string, error) {
	if !s.Installed {
		return "", ErrHostToolUnavailable
	}

	binary := s.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	plugin := s.PluginName
	if plugin == "" {
		plugin = DefaultPluginName
	}

	return renderBuildCommand(binary, plugin, args, env), nil
}

// BuildCommandsForTargets renders a build command for each target.
func (s *Static) BuildCommandsForTargets(targets []string, args BuildArgs, env string) ([]string, error) {
	return buildCommandsForTargets(s, targets, args, env)
}

func buildCommandsForTargets(tool Tool, targets []string, args BuildArgs, env string) ([]string, error) {
	commands := make([]string, 0, len(targets))
	for _, target := range targets {
		targetArgs := args
		targetArgs.Target = target

		command, err := tool.BuildCommand(targetArgs, env)
		if err != nil {
			return nil, fmt.Errorf("failed to generate build command for %q: %w", target, err)
		}
		commands = append(commands, command)
	}
	return commands, nil
}

// renderBuildCommand writes "[env ]binary build [target] --type t [--run]
// --plugin name [--key value...]".
func renderBuildCommand(binary, pluginName string, args BuildArgs, env string) string {
	parts := []string{}
	if env != "" {
		parts = append(parts, env)
	}
	parts = append(parts, binary, "build")
	if args.Target != "" {
		parts = append(parts, args.Target)
	}
	if args.Type != "" {
		parts = append(parts, "--type", args.Type)
	}
	if args.Run {
		parts = append(parts, "--run")
	}
	parts = append(parts, "--"+pluginFlag, pluginName)

	keys := make([]string, 0, len(args.Extra))
	for key := range args.Extra {
		if key == pluginFlag || key == "type" || key == "run" || key == "target" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts = append(parts, "--"+key)
		if value := args.Extra[key]; value != "" {
			parts = append(parts, value)
		}
	}

	return strings.Join(parts, " ")
}
