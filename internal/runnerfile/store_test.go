package runnerfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func nodeTarget(name, build string) Descriptor {
	return Descriptor{
		Name:    name,
		Entry:   Entry{Production: "start.js"},
		Folders: Folders{Build: build},
		Is:      Kind{Node: true},
	}
}

func TestReadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, "", "2.0.0", nil)

	record, err := store.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := &Record{
		RunnerVersion: "2.0.0",
		Version:       DevelopmentVersion,
		Directory:     "",
		Targets:       map[string]Target{},
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}

	if store.Exists() {
		t.Error("Read() must not create the runner file")
	}
}

func TestReadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, "", "2.0.0", nil)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Read(); err == nil {
		t.Error("expected a parse error for a malformed runner file")
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name       string
		descriptor Descriptor
		directory  string
		wantPath   string
	}{
		{
			name:       "build folder is the build directory",
			descriptor: nodeTarget("api", "dist"),
			directory:  "dist",
			wantPath:   "start.js",
		},
		{
			name:       "build folder inside the build directory",
			descriptor: nodeTarget("api", "dist/api"),
			directory:  "dist",
			wantPath:   "api/start.js",
		},
		{
			name:       "trailing separator on the build directory",
			descriptor: nodeTarget("api", "dist/api"),
			directory:  "dist/",
			wantPath:   "api/start.js",
		},
		{
			name:       "absolute paths",
			descriptor: nodeTarget("api", "/project/dist/services/api"),
			directory:  "/project/dist",
			wantPath:   "services/api/start.js",
		},
		{
			name: "bundled target",
			descriptor: Descriptor{
				Name:    "api",
				Entry:   Entry{Production: "start.js"},
				Folders: Folders{Build: "dist/api"},
				Bundle:  true,
				Is:      Kind{Node: true},
			},
			directory: "dist",
			wantPath:  "api/api.js",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := New(t.TempDir(), "", "2.0.0", nil)

			target, err := store.Update(test.descriptor, "1.2.0", test.directory)
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			want := &Target{Name: "api", Path: test.wantPath, Options: map[string]any{}}
			if diff := cmp.Diff(want, target); diff != "" {
				t.Errorf("Update() mismatch (-want +got):\n%s", diff)
			}

			record, err := store.Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if diff := cmp.Diff(*want, record.Targets["api"]); diff != "" {
				t.Errorf("persisted target mismatch (-want +got):\n%s", diff)
			}
			if record.Version != "1.2.0" {
				t.Errorf("Version = %q, want %q", record.Version, "1.2.0")
			}
			if record.Directory != test.directory {
				t.Errorf("Directory = %q, want %q", record.Directory, test.directory)
			}
		})
	}
}

func TestUpdateSkipsNonNodeTargets(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)
	descriptor := Descriptor{
		Name:    "web",
		Entry:   Entry{Production: "index.js"},
		Folders: Folders{Build: "dist/web"},
		Is:      Kind{Browser: true},
	}

	target, err := store.Update(descriptor, "1.2.0", "dist")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if target != nil {
		t.Errorf("Update() = %+v, want nil for a browser target", target)
	}
	if store.Exists() {
		t.Error("Update() must not write the runner file for a browser target")
	}
}

func TestUpdateRejectsFoldersOutsideTheBuildDirectory(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)

	_, err := store.Update(nodeTarget("api", "other/api"), "1.2.0", "dist")
	if !errors.Is(err, ErrOutsideBuildDirectory) {
		t.Errorf("Update() error = %v, want ErrOutsideBuildDirectory", err)
	}
	if store.Exists() {
		t.Error("Update() must not write the runner file on error")
	}
}

func TestUpdatePreservesOtherTargets(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)

	if _, err := store.Update(nodeTarget("api", "dist/api"), "1.0.0", "dist"); err != nil {
		t.Fatal(err)
	}
	worker := nodeTarget("worker", "dist/worker")
	worker.RunnerOptions = map[string]any{"runWith": "nodemon"}
	if _, err := store.Update(worker, "1.1.0", "dist"); err != nil {
		t.Fatal(err)
	}

	record, err := store.Read()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]Target{
		"api":    {Name: "api", Path: "api/start.js", Options: map[string]any{}},
		"worker": {Name: "worker", Path: "worker/start.js", Options: map[string]any{"runWith": "nodemon"}},
	}
	if diff := cmp.Diff(want, record.Targets); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
	if record.Version != "1.1.0" {
		t.Errorf("Version = %q, want %q", record.Version, "1.1.0")
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)
	descriptor := nodeTarget("api", "dist/api")
	descriptor.RunnerOptions = map[string]any{"runWith": "nodemon", "build": []any{"worker"}}

	if _, err := store.Update(descriptor, "1.2.0", "dist"); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Update(descriptor, "1.2.0", "dist"); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("runner file changed between identical updates:\n%s\n---\n%s", first, second)
	}
}

func TestUpdateWritesTheDocumentedFormat(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)
	if _, err := store.Update(nodeTarget("api", "dist"), "1.2.0", "dist"); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}

	want := `{
  "runnerVersion": "2.0.0",
  "version": "1.2.0",
  "directory": "dist",
  "targets": {
    "api": {
      "name": "api",
      "path": "start.js",
      "options": {}
    }
  }
}
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("runner file mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateVersion(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)
	if _, err := store.Update(nodeTarget("api", "dist/api"), "1.0.0", "dist"); err != nil {
		t.Fatal(err)
	}

	record, err := store.UpdateVersion("1.0.1")
	if err != nil {
		t.Fatalf("UpdateVersion() error = %v", err)
	}
	if record.Version != "1.0.1" {
		t.Errorf("Version = %q, want %q", record.Version, "1.0.1")
	}

	persisted, err := store.Read()
	if err != nil {
		t.Fatal(err)
	}
	want := &Record{
		RunnerVersion: "2.0.0",
		Version:       "1.0.1",
		Directory:     "dist",
		Targets: map[string]Target{
			"api": {Name: "api", Path: "api/start.js", Options: map[string]any{}},
		},
	}
	if diff := cmp.Diff(want, persisted); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateVersionWithoutFileCreatesIt(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)

	if _, err := store.UpdateVersion("3.0.0"); err != nil {
		t.Fatal(err)
	}
	if !store.Exists() {
		t.Fatal("UpdateVersion() should write the runner file")
	}

	record, err := store.Read()
	if err != nil {
		t.Fatal(err)
	}
	if record.Version != "3.0.0" || len(record.Targets) != 0 {
		t.Errorf("unexpected record %+v", record)
	}
}

func TestFilename(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, "", "2.0.0", nil)
	if store.Filename() != DefaultFilename {
		t.Errorf("Filename() = %q, want %q", store.Filename(), DefaultFilename)
	}

	if _, err := store.UpdateVersion("1.0.0"); err != nil {
		t.Fatal(err)
	}

	store.SetFilename("runnerfile.json")
	if store.Filename() != "runnerfile.json" {
		t.Errorf("Filename() = %q, want %q", store.Filename(), "runnerfile.json")
	}
	if store.Path() != filepath.Join(dir, "runnerfile.json") {
		t.Errorf("Path() = %q", store.Path())
	}
	if store.Exists() {
		t.Error("renaming must not move the existing file")
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultFilename)); err != nil {
		t.Errorf("original file should still exist: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		hostInstalled bool
		fileExists    bool
		wantErr       error
	}{
		{name: "host present, no file", hostInstalled: true},
		{name: "host present, file", hostInstalled: true, fileExists: true},
		{name: "standalone, file", fileExists: true},
		{name: "standalone, no file", wantErr: ErrMissingRunnerFile},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := New(t.TempDir(), "", "2.0.0", nil)
			if test.fileExists {
				if _, err := store.UpdateVersion("1.0.0"); err != nil {
					t.Fatal(err)
				}
			}

			err := store.Validate(test.hostInstalled)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestCheckSchema(t *testing.T) {
	store := New(t.TempDir(), "", "2.0.0", nil)
	if _, err := store.Update(nodeTarget("api", "dist/api"), "1.0.0", "dist"); err != nil {
		t.Fatal(err)
	}
	if err := store.CheckSchema(); err != nil {
		t.Errorf("CheckSchema() on a written file: %v", err)
	}

	bad := `{"runnerVersion": "2.0.0", "version": "1.0.0", "directory": "dist", "targets": {"api": {"name": "api"}}}`
	if err := os.WriteFile(store.Path(), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	var schemaErr *SchemaError
	if err := store.CheckSchema(); !errors.As(err, &schemaErr) {
		t.Fatalf("CheckSchema() error = %v, want a *SchemaError", err)
	}
	if len(schemaErr.Problems) == 0 {
		t.Error("expected at least one schema problem")
	}
}

func TestTargetOptions(t *testing.T) {
	tests := []struct {
		name      string
		options   map[string]any
		wantRun   string
		wantBuild []string
	}{
		{name: "defaults", options: map[string]any{}, wantRun: "node"},
		{name: "custom runner", options: map[string]any{"runWith": "nodemon"}, wantRun: "nodemon"},
		{name: "single dependency", options: map[string]any{"build": "worker"}, wantRun: "node", wantBuild: []string{"worker"}},
		{name: "dependency list", options: map[string]any{"build": []any{"worker", "cron"}}, wantRun: "node", wantBuild: []string{"worker", "cron"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			target := Target{Name: "api", Options: test.options}
			if got := target.RunWith(); got != test.wantRun {
				t.Errorf("RunWith() = %q, want %q", got, test.wantRun)
			}
			if diff := cmp.Diff(test.wantBuild, target.BuildDependencies(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("BuildDependencies() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
