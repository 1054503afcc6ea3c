package runner

import (
	"sort"
	"strings"

	"github.com/dosanma1/forge-runner/internal/runnerfile"
)

// environmentVariables maps the runner file values exposed to the target
// process to the variable names they are exported as.
var environmentVariables = map[string]string{
	"version": "VERSION",
}

// environmentValues extracts the exposed values from a record.
func environmentValues(record *runnerfile.Record) map[string]string {
	return map[string]string{
		"version": record.Version,
	}
}

// Environment renders the NAME=value prefix for a record's commands.
// Variables are sorted by name and empty values are left out.
func Environment(record *runnerfile.Record) string {
	values := environmentValues(record)

	vars := make([]string, 0, len(environmentVariables))
	for key, name := range environmentVariables {
		value := values[key]
		if value == "" {
			continue
		}
		vars = append(vars, name+"="+value)
	}
	sort.Strings(vars)

	return strings.Join(vars, " ")
}
