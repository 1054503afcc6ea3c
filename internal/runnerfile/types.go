// Package runnerfile manages the runner file: the JSON sidecar that records,
// for every production build, where each target's executable ended up.
package runnerfile

// DefaultFilename is the name of the runner file when none is configured.
const DefaultFilename = ".runnerfile"

// DevelopmentVersion is the project version of a runner file that was never
// stamped by a build or a revision.
const DevelopmentVersion = "development"

// Record is the content of the runner file.
type Record struct {
	RunnerVersion string            `json:"runnerVersion"`
	Version       string            `json:"version"`
	Directory     string            `json:"directory"`
	Targets       map[string]Target `json:"targets"`
}

// Target is the information the runner needs to execute a built target.
type Target struct {
	Name    string         `json:"name"`
	Path    string         `json:"path"`
	Options map[string]any `json:"options"`

	// Exec is the resolved path to the executable. It depends on where the
	// runner is invoked from, so it's computed on lookup and never persisted.
	Exec string `json:"-"`
}

// RunWith returns the binary the target should be executed with.
func (t *Target) RunWith() string {
	if v, ok := t.Options["runWith"].(string); ok && v != "" {
		return v
	}
	return "node"
}

// BuildDependencies returns the targets that need to be built before this one.
// The option can be a single name or a list of names.
func (t *Target) BuildDependencies() []string {
	switch v := t.Options["build"].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if name, ok := item.(string); ok && name != "" {
				names = append(names, name)
			}
		}
		return names
	default:
		return nil
	}
}

// Descriptor is the build-time information about a target, as the host build
// tool reports it.
type Descriptor struct {
	Name          string         `json:"name"`
	Entry         Entry          `json:"entry"`
	Folders       Folders        `json:"folders"`
	Bundle        bool           `json:"bundle"`
	Is            Kind           `json:"is"`
	RunnerOptions map[string]any `json:"runnerOptions,omitempty"`
}

// Entry holds the entry files of a target per build type.
type Entry struct {
	Development string `json:"development,omitempty"`
	Production  string `json:"production"`
}

// Folders holds the output folders of a target.
type Folders struct {
	Build string `json:"build"`
}

// Kind tells which runtime a target is built for.
type Kind struct {
	Node    bool `json:"node"`
	Browser bool `json:"browser,omitempty"`
}

// Executable returns the name of the file the build produces for the target:
// bundled targets are emitted as <name>.js.
func (d *Descriptor) Executable() string {
	if d.Bundle {
		return d.Name + ".js"
	}
	return d.Entry.Production
}
