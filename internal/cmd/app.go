package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dosanma1/forge-runner/internal/config"
	"github.com/dosanma1/forge-runner/internal/host"
	"github.com/dosanma1/forge-runner/internal/runner"
	"github.com/dosanma1/forge-runner/internal/runnerfile"
	"github.com/dosanma1/forge-runner/internal/targets"
)

// app holds the services a command works with, wired from the configuration.
type app struct {
	projectDir string
	config     *config.Config
	logger     *log.Logger
	tool       host.Tool
	store      *runnerfile.Store
	registry   *targets.Registry
	runner     *runner.Runner
}

// loadApp reads the configuration and creates the services. Whether the host
// build tool is installed is decided once here and injected everywhere.
func loadApp() (*app, error) {
	logger := newLogger()

	projectDir, err := resolveProjectDir(rootProjectDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{
		ProjectDir:     projectDir,
		ConfigFilePath: rootConfigPath,
	})
	if err != nil {
		return nil, err
	}

	var tool host.Tool
	if rootStandalone || cfg.Host.Disabled {
		tool = &host.Static{Installed: false}
	} else {
		tool = host.NewCLI(cfg.Host.Binary, cfg.Host.PluginName, logger)
	}

	packageName, err := targets.ReadPackageName(cfg.ResolvePackageFile(projectDir))
	if err != nil {
		logger.Warn("ignoring package file", "err", err)
		packageName = ""
	}

	basePath := cfg.ResolveBasePath(projectDir, rootBasePath)
	store := runnerfile.New(projectDir, cfg.RunnerFile, version, logger)
	registry := targets.New(store, basePath, packageName, tool.IsInstalled())

	logger.Debug("runner ready",
		"project", projectDir,
		"runnerFile", store.Path(),
		"basePath", basePath,
		"hostInstalled", tool.IsInstalled())

	r := runner.New(tool, store, registry, basePath, cfg.SelfCommand)
	flags, err := rootFlags(projectDir, basePath)
	if err != nil {
		return nil, err
	}
	r.SetRootFlags(flags...)

	return &app{
		projectDir: projectDir,
		config:     cfg,
		logger:     logger,
		tool:       tool,
		store:      store,
		registry:   registry,
		runner:     r,
	}, nil
}

// rootFlags returns the global flags this invocation was given, with paths
// made absolute, for the runner to repeat on its second pass.
func rootFlags(projectDir, basePath string) ([]string, error) {
	var flags []string
	if rootProjectDir != "" {
		flags = append(flags, "--dir", projectDir)
	}
	if rootConfigPath != "" {
		path, err := filepath.Abs(rootConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		flags = append(flags, "--config", path)
	}
	if rootBasePath != "" {
		flags = append(flags, "--base-path", basePath)
	}
	if rootVerbose {
		flags = append(flags, "--verbose")
	}
	return flags, nil
}

// plugin returns the host lifecycle plugin for this app.
func (a *app) plugin() *host.Plugin {
	return host.NewPlugin(a.tool, a.store, a.config.Host.PluginName, a.logger)
}

func resolveProjectDir(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		return cwd, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("project directory not found: %s", dir)
	}
	return abs, nil
}

// targetArg returns the optional target name argument.
func targetArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
