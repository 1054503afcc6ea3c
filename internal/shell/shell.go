// Package shell executes the command strings the runner generates with an
// embedded POSIX shell, for environments that don't ship one.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ExitError is returned when a command finishes with a non-zero status.
type ExitError struct {
	Command string
	Status  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.Status)
}

// Executor runs shell command strings.
type Executor struct {
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// NewExecutor creates an executor that inherits the process environment and
// standard streams.
func NewExecutor(dir string, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Executor{
		Dir:    dir,
		Env:    os.Environ(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run parses and executes command. Commands separated by ';' run in
// sequence, like they would on sh.
func (e *Executor) Run(ctx context.Context, command string) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return fmt.Errorf("failed to parse command %q: %w", command, err)
	}

	runner, err := interp.New(
		interp.StdIO(e.Stdin, e.Stdout, e.Stderr),
		interp.Env(expand.ListEnviron(e.Env...)),
		interp.Dir(e.Dir),
	)
	if err != nil {
		return fmt.Errorf("failed to create shell: %w", err)
	}

	e.Logger.Debug("executing", "command", command)

	if err := runner.Run(ctx, file); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return &ExitError{Command: command, Status: int(status)}
		}
		return fmt.Errorf("failed to execute %q: %w", command, err)
	}

	return nil
}
