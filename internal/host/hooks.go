package host

import (
	"fmt"

	"github.com/dosanma1/forge-runner/internal/runnerfile"
)

// BuildCommandsPayload is sent by the host build tool right before it runs
// the commands that build a target.
type BuildCommandsPayload struct {
	Commands       []string              `json:"commands"`
	Target         runnerfile.Descriptor `json:"target"`
	Type           string                `json:"type"`
	Run            bool                  `json:"run"`
	UnknownOptions map[string]any        `json:"unknownOptions,omitempty"`
	Version        string                `json:"version"`
	Directory      string                `json:"directory"`
}

// BuildCommandsHook receives the build payload and returns the commands the
// host tool should run.
type BuildCommandsHook func(payload BuildCommandsPayload) ([]string, error)

// FilesToCopyHook receives the list of files the host tool copies into the
// distribution directory and returns the updated list.
type FilesToCopyHook func(files []string) ([]string, error)

// RevisionHook is called when the host tool generates a new revision.
type RevisionHook func(version string) error

// Hooks holds the callbacks registered for the host build lifecycle. They run
// synchronously, in registration order, each one receiving the value the
// previous one returned.
type Hooks struct {
	buildCommands []BuildCommandsHook
	filesToCopy   []FilesToCopyHook
	revision      []RevisionHook
}

// NewHooks creates an empty set of hooks.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnBuildCommands registers a build commands hook.
func (h *Hooks) OnBuildCommands(hook BuildCommandsHook) {
	h.buildCommands = append(h.buildCommands, hook)
}

// OnFilesToCopy registers a files to copy hook.
func (h *Hooks) OnFilesToCopy(hook FilesToCopyHook) {
	h.filesToCopy = append(h.filesToCopy, hook)
}

// OnRevision registers a revision hook.
func (h *Hooks) OnRevision(hook RevisionHook) {
	h.revision = append(h.revision, hook)
}

// BuildCommands runs the build commands hooks.
func (h *Hooks) BuildCommands(payload BuildCommandsPayload) ([]string, error) {
	commands := payload.Commands
	for _, hook := range h.buildCommands {
		payload.Commands = commands
		updated, err := hook(payload)
		if err != nil {
			return nil, fmt.Errorf("build commands hook failed: %w", err)
		}
		commands = updated
	}
	return commands, nil
}

// FilesToCopy runs the files to copy hooks.
func (h *Hooks) FilesToCopy(files []string) ([]string, error) {
	for _, hook := range h.filesToCopy {
		updated, err := hook(files)
		if err != nil {
			return nil, fmt.Errorf("files to copy hook failed: %w", err)
		}
		files = updated
	}
	return files, nil
}

// Revision runs the revision hooks.
func (h *Hooks) Revision(version string) error {
	for _, hook := range h.revision {
		if err := hook(version); err != nil {
			return fmt.Errorf("revision hook failed: %w", err)
		}
	}
	return nil
}
