// Package runner generates the shell commands needed to execute a target,
// with or without the host build tool.
package runner

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/dosanma1/forge-runner/internal/host"
	"github.com/dosanma1/forge-runner/internal/runnerfile"
	"github.com/dosanma1/forge-runner/internal/targets"
)

// DefaultSelfCommand is how the runner invokes itself for the second pass of
// a production run.
const DefaultSelfCommand = "forge-runner"

// Runner resolves the commands to execute a target.
type Runner struct {
	tool        host.Tool
	store       *runnerfile.Store
	registry    *targets.Registry
	basePath    string
	selfCommand string
	rootFlags   []string
}

// New creates a runner. basePath must be the same one the registry resolves
// executables from.
func New(tool host.Tool, store *runnerfile.Store, registry *targets.Registry, basePath, selfCommand string) *Runner {
	if selfCommand == "" {
		selfCommand = DefaultSelfCommand
	}

	return &Runner{
		tool:        tool,
		store:       store,
		registry:    registry,
		basePath:    basePath,
		selfCommand: selfCommand,
	}
}

// Commands returns the ';' separated commands that execute a target.
//
// Without the host build tool the target is read from the runner file and
// executed directly. With the tool, a development run is delegated to it and
// a production run becomes two commands: a production build, which updates
// the runner file, and a second invocation of the runner flagged as ready,
// which executes the freshly built target.
func (r *Runner) Commands(name string, production, ready bool) (string, error) {
	var (
		commands []string
		err      error
	)

	switch {
	case !r.tool.IsInstalled():
		commands, err = r.standaloneCommands(name, false)
	case ready:
		commands, err = r.standaloneCommands(name, true)
	case production:
		commands, err = r.productionCommands(name)
	default:
		commands, err = r.developmentCommands(name)
	}
	if err != nil {
		return "", err
	}

	return strings.Join(commands, ";"), nil
}

// SetRootFlags sets the global flags the first pass was called with, like
// --dir or --config. The ready command repeats them so the second pass
// resolves the same project.
func (r *Runner) SetRootFlags(flags ...string) {
	r.rootFlags = flags
}

// ReadyCommand returns the invocation that runs a target once its production
// build finished.
func (r *Runner) ReadyCommand(name string) string {
	parts := []string{r.selfCommand}
	for _, flag := range r.rootFlags {
		parts = append(parts, shellQuote(flag))
	}
	parts = append(parts, "run")
	if name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, "--production", "--ready")
	return strings.Join(parts, " ")
}

func (r *Runner) developmentCommands(name string) ([]string, error) {
	env, err := r.environment()
	if err != nil {
		return nil, err
	}

	command, err := r.tool.BuildCommand(host.BuildArgs{
		Target: name,
		Type:   host.BuildTypeDevelopment,
		Run:    true,
	}, env)
	if err != nil {
		return nil, err
	}

	return []string{command}, nil
}

// BuildCommand returns the host command that builds a target for production,
// the first half of a production run.
func (r *Runner) BuildCommand(name string) (string, error) {
	return r.tool.BuildCommand(host.BuildArgs{
		Target: name,
		Type:   host.BuildTypeProduction,
	}, "")
}

func (r *Runner) productionCommands(name string) ([]string, error) {
	build, err := r.BuildCommand(name)
	if err != nil {
		return nil, err
	}

	return []string{build, r.ReadyCommand(name)}, nil
}

// standaloneCommands executes the target straight from the runner file. When
// the host tool is installed the runner file sits on the project root instead
// of the build directory, so the record directory is part of the path.
func (r *Runner) standaloneCommands(name string, fromProjectRoot bool) ([]string, error) {
	target, err := r.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	record, err := r.store.Read()
	if err != nil {
		return nil, err
	}

	exec := target.Exec
	if fromProjectRoot {
		exec = filepath.Join(r.basePath, record.Directory, target.Path)
	}

	command := fmt.Sprintf("%s %s", target.RunWith(), exec)
	if env := Environment(record); env != "" {
		command = env + " " + command
	}

	return []string{command}, nil
}

func (r *Runner) environment() (string, error) {
	record, err := r.store.Read()
	if err != nil {
		return "", err
	}
	return Environment(record), nil
}

// shellQuote quotes s only when the shell would otherwise split or expand it.
func shellQuote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return strconv.Quote(s)
	}
	return quoted
}
