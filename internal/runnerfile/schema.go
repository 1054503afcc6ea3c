package runnerfile

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/runnerfile.v1.schema.json
var schemaFS embed.FS

const schemaFile = "schemas/runnerfile.v1.schema.json"

// SchemaError lists the problems found when checking the runner file
// against its JSON schema.
type SchemaError struct {
	Path     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("runner file %s is invalid: %s", e.Path, strings.Join(e.Problems, "; "))
}

// CheckSchema validates the runner file on disk against the embedded schema.
// Read never does this, it's meant for explicit checks.
func (s *Store) CheckSchema() error {
	schemaBytes, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to load JSON schema: %w", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		return fmt.Errorf("failed to read runner file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return &SchemaError{Path: s.Path(), Problems: problems}
}
