package host

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/dosanma1/forge-runner/internal/runnerfile"
)

// Plugin keeps the runner file in sync with the host build lifecycle.
type Plugin struct {
	tool       Tool
	store      *runnerfile.Store
	pluginName string
	logger     *log.Logger
}

// NewPlugin creates the plugin. pluginName must match the value the tool
// adapter sends on the --plugin flag, it's how the plugin recognizes the
// builds it requested.
func NewPlugin(tool Tool, store *runnerfile.Store, pluginName string, logger *log.Logger) *Plugin {
	if pluginName == "" {
		pluginName = DefaultPluginName
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Plugin{
		tool:       tool,
		store:      store,
		pluginName: pluginName,
		logger:     logger,
	}
}

// Register adds the plugin callbacks to the hooks:
//   - build commands: save the target on the runner file and, for production
//     builds requested by the runner, build the targets it depends on first.
//   - files to copy: ship the runner file with the distribution.
//   - revision: stamp the new version on the runner file.
func (p *Plugin) Register(hooks *Hooks) {
	hooks.OnBuildCommands(p.updateBuildCommands)
	hooks.OnFilesToCopy(p.updateCopyList)
	hooks.OnRevision(p.updateVersion)
}

func (p *Plugin) updateBuildCommands(payload BuildCommandsPayload) ([]string, error) {
	target, err := p.store.Update(payload.Target, payload.Version, payload.Directory)
	if err != nil {
		return nil, err
	}

	requestedBy, _ := payload.UnknownOptions[pluginFlag].(string)
	if target == nil ||
		payload.Type != BuildTypeProduction ||
		requestedBy != p.pluginName {
		return payload.Commands, nil
	}

	dependencies := target.BuildDependencies()
	if len(dependencies) == 0 {
		return payload.Commands, nil
	}

	extra := forwardedOptions(payload.UnknownOptions)

	// Dependencies are only built, never run.
	prepend, err := p.tool.BuildCommandsForTargets(dependencies, BuildArgs{
		Type:  payload.Type,
		Extra: extra,
	}, "")
	if err != nil {
		return nil, err
	}

	p.logger.Debug("building target dependencies first", "target", target.Name, "dependencies", dependencies)

	commands := make([]string, 0, len(prepend)+len(payload.Commands))
	commands = append(commands, prepend...)
	commands = append(commands, payload.Commands...)
	return commands, nil
}

// forwardedOptions turns the host's unknown options back into flag values.
// A true boolean is a bare flag and a false one is dropped.
func forwardedOptions(options map[string]any) map[string]string {
	extra := make(map[string]string, len(options))
	for key, value := range options {
		switch v := value.(type) {
		case nil:
		case bool:
			if v {
				extra[key] = ""
			}
		case string:
			extra[key] = v
		default:
			extra[key] = fmt.Sprint(v)
		}
	}
	return extra
}

func (p *Plugin) updateCopyList(files []string) ([]string, error) {
	updated := make([]string, 0, len(files)+1)
	updated = append(updated, files...)
	return append(updated, p.store.Filename()), nil
}

func (p *Plugin) updateVersion(version string) error {
	_, err := p.store.UpdateVersion(version)
	return err
}
