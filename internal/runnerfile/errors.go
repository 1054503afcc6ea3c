package runnerfile

import "errors"

var (
	// ErrMissingRunnerFile is returned when the runner file is needed and the
	// host build tool is not there to generate it.
	ErrMissingRunnerFile = errors.New("the runner file doesn't exist and the build tool is not present, you first need to build a target")

	// ErrOutsideBuildDirectory is returned when a target's build folder is not
	// inside the project build directory.
	ErrOutsideBuildDirectory = errors.New("target build folder is outside the build directory")
)
