package runnerfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/charmbracelet/log"
)

// Store reads and writes the runner file. Every call goes to disk, the file
// is the only source of truth between invocations.
type Store struct {
	dir           string
	filename      string
	runnerVersion string
	logger        *log.Logger
}

// New creates a store for the runner file named filename inside dir.
// runnerVersion is the version of this program, stamped on every write.
func New(dir, filename, runnerVersion string, logger *log.Logger) *Store {
	if filename == "" {
		filename = DefaultFilename
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Store{
		dir:           dir,
		filename:      filename,
		runnerVersion: runnerVersion,
		logger:        logger,
	}
}

// Filename returns the runner file name.
func (s *Store) Filename() string {
	return s.filename
}

// SetFilename changes the runner file name. A file already written under the
// previous name is left where it is.
func (s *Store) SetFilename(name string) {
	s.filename = name
}

// Path returns the full path to the runner file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.filename)
}

// Exists checks whether the runner file is on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Read loads the runner file. When the file doesn't exist it returns a
// default record without writing it.
func (s *Store) Read() (*Record, error) {
	if !s.Exists() {
		return s.defaultRecord(), nil
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read runner file: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse runner file %s: %w", s.Path(), err)
	}

	if record.Targets == nil {
		record.Targets = make(map[string]Target)
	}

	s.checkRunnerVersion(record.RunnerVersion)
	return &record, nil
}

// Update saves a target's build information on the runner file, along with
// the project version and build directory. Targets that can't be executed by
// the runner (anything that is not a Node target) are ignored: nothing is
// read or written and both return values are nil.
func (s *Store) Update(d Descriptor, version, directory string) (*Target, error) {
	if !d.Is.Node {
		s.logger.Debug("skipping non node target", "target", d.Name)
		return nil, nil
	}

	record, err := s.Read()
	if err != nil {
		return nil, err
	}

	record.Version = version
	record.Directory = directory

	rel, err := relativeBuildPath(directory, d.Folders.Build)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", d.Name, err)
	}

	options := d.RunnerOptions
	if options == nil {
		options = map[string]any{}
	}

	target := Target{
		Name:    d.Name,
		Path:    filepath.Join(rel, d.Executable()),
		Options: options,
	}
	record.Targets[d.Name] = target

	if err := s.write(record); err != nil {
		return nil, err
	}

	s.logger.Debug("runner file updated", "target", d.Name, "path", target.Path, "version", version)
	return &target, nil
}

// UpdateVersion changes the project version on the runner file and keeps
// everything else.
func (s *Store) UpdateVersion(version string) (*Record, error) {
	record, err := s.Read()
	if err != nil {
		return nil, err
	}

	record.Version = version
	if err := s.write(record); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate fails when the host build tool is not installed and the runner
// file doesn't exist, since there would be no way to generate it.
func (s *Store) Validate(hostInstalled bool) error {
	if !hostInstalled && !s.Exists() {
		return ErrMissingRunnerFile
	}
	return nil
}

func (s *Store) defaultRecord() *Record {
	return &Record{
		RunnerVersion: s.runnerVersion,
		Version:       DevelopmentVersion,
		Directory:     "",
		Targets:       make(map[string]Target),
	}
}

// write overwrites the whole file. There is no locking nor atomic rename: the
// runner file is written by one build at a time.
func (s *Store) write(record *Record) error {
	record.RunnerVersion = s.runnerVersion

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal runner file: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write runner file: %w", err)
	}

	return nil
}

// checkRunnerVersion warns when the file was written by a newer major
// version, its format may have changed.
func (s *Store) checkRunnerVersion(fileVersion string) {
	if fileVersion == "" || s.runnerVersion == "" {
		return
	}

	current, err := semver.ParseTolerant(s.runnerVersion)
	if err != nil {
		return
	}
	written, err := semver.ParseTolerant(fileVersion)
	if err != nil {
		s.logger.Debug("runner file has an invalid runner version", "version", fileVersion)
		return
	}

	if written.Major > current.Major {
		s.logger.Warn("runner file was written by a newer runner",
			"file", s.Path(), "written", written.String(), "current", current.String())
	}
}

// relativeBuildPath returns the target build folder relative to the build
// directory. Both are cleaned first; when they are the same the result is
// "./". A folder that is not inside the directory is an error.
func relativeBuildPath(directory, build string) (string, error) {
	dir := filepath.Clean(directory)
	target := filepath.Clean(build)
	if dir == target {
		return "./", nil
	}

	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not inside %s", ErrOutsideBuildDirectory, build, directory)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not inside %s", ErrOutsideBuildDirectory, build, directory)
	}

	return rel, nil
}
