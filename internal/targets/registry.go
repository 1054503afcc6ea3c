// Package targets resolves target names against the runner file and checks
// whether a target can be executed.
package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dosanma1/forge-runner/internal/runnerfile"
)

// ErrNoTargets is returned when a default target is needed and the runner
// file has none.
var ErrNoTargets = errors.New("there are no targets on the runner file, you first need to build one")

// UnknownTargetError is returned when a target is not on the runner file.
type UnknownTargetError struct {
	Name string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("the information for target %q is not on the runner file, you first need to build it", e.Name)
}

// MissingExecutableError is returned when a target's executable is not on disk.
type MissingExecutableError struct {
	Target string
	Path   string
}

func (e *MissingExecutableError) Error() string {
	return fmt.Sprintf("the executable for target %q doesn't exist: %s", e.Target, e.Path)
}

// Registry looks up targets on the runner file.
type Registry struct {
	store         *runnerfile.Store
	basePath      string
	packageName   string
	hostInstalled bool
}

// New creates a registry. basePath is the directory executable paths are
// resolved from, packageName is used to pick the default target.
func New(store *runnerfile.Store, basePath, packageName string, hostInstalled bool) *Registry {
	return &Registry{
		store:         store,
		basePath:      basePath,
		packageName:   packageName,
		hostInstalled: hostInstalled,
	}
}

// Get returns the target with the given name and its resolved executable path.
func (r *Registry) Get(name string) (*runnerfile.Target, error) {
	record, err := r.store.Read()
	if err != nil {
		return nil, err
	}

	target, ok := record.Targets[name]
	if !ok {
		return nil, &UnknownTargetError{Name: name}
	}

	return r.withExec(target), nil
}

// Default returns the target to use when no name is given: the one named
// after the project package, or the first one in alphabetical order.
func (r *Registry) Default() (*runnerfile.Target, error) {
	record, err := r.store.Read()
	if err != nil {
		return nil, err
	}

	names := sortedNames(record.Targets)
	if len(names) == 0 {
		return nil, ErrNoTargets
	}

	name := names[0]
	if _, ok := record.Targets[r.packageName]; ok && r.packageName != "" {
		name = r.packageName
	}

	return r.withExec(record.Targets[name]), nil
}

// Resolve returns the named target, or the default one when name is empty.
func (r *Registry) Resolve(name string) (*runnerfile.Target, error) {
	if name == "" {
		return r.Default()
	}
	return r.Get(name)
}

// List returns all the targets on the runner file sorted by name.
func (r *Registry) List() ([]runnerfile.Target, error) {
	record, err := r.store.Read()
	if err != nil {
		return nil, err
	}

	names := sortedNames(record.Targets)
	list := make([]runnerfile.Target, 0, len(names))
	for _, name := range names {
		list = append(list, *r.withExec(record.Targets[name]))
	}

	return list, nil
}

// Validate checks that a target can be executed without the host build tool.
// When the tool is installed there's nothing to check: it will build the
// target and generate the runner file.
func (r *Registry) Validate(name string) error {
	if r.hostInstalled {
		return nil
	}

	if !r.store.Exists() {
		return runnerfile.ErrMissingRunnerFile
	}

	target, err := r.Resolve(name)
	if err != nil {
		return err
	}

	if _, err := os.Stat(target.Exec); err != nil {
		return &MissingExecutableError{Target: target.Name, Path: target.Exec}
	}

	return nil
}

func (r *Registry) withExec(target runnerfile.Target) *runnerfile.Target {
	target.Exec = filepath.Join(r.basePath, target.Path)
	return &target
}

func sortedNames(targets map[string]runnerfile.Target) []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadPackageName returns the name from a package.json file. A missing file
// means there is no package name.
func ReadPackageName(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read package file: %w", err)
	}

	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("failed to parse package file %s: %w", path, err)
	}

	return pkg.Name, nil
}
