// Package config loads the runner configuration from .forge-runner.yaml and
// FORGE_RUNNER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dosanma1/forge-runner/internal/host"
	"github.com/dosanma1/forge-runner/internal/runner"
	"github.com/dosanma1/forge-runner/internal/runnerfile"
	"github.com/dosanma1/forge-runner/pkg/xos"
)

const (
	// FileName is the configuration file looked up in the project directory.
	FileName = ".forge-runner.yaml"
	// EnvPrefix prefixes the environment variables that override the file.
	EnvPrefix = "FORGE_RUNNER"
)

// Config represents the .forge-runner.yaml configuration file.
type Config struct {
	// RunnerFile is the runner file name.
	RunnerFile string `mapstructure:"runner_file" yaml:"runner_file"`

	// BasePath is where executables are resolved from. Relative paths are
	// relative to the project directory.
	BasePath string `mapstructure:"base_path" yaml:"base_path,omitempty"`

	// PackageFile is the package.json used to pick the default target.
	PackageFile string `mapstructure:"package_file" yaml:"package_file"`

	// SelfCommand is how the runner invokes itself on a production run.
	SelfCommand string `mapstructure:"self_command" yaml:"self_command"`

	// Host build tool settings
	Host HostConfig `mapstructure:"host" yaml:"host"`
}

// HostConfig holds the host build tool settings.
type HostConfig struct {
	Binary     string `mapstructure:"binary" yaml:"binary"`
	PluginName string `mapstructure:"plugin_name" yaml:"plugin_name"`
	// Disabled forces the runner to behave as if the tool wasn't installed.
	Disabled bool `mapstructure:"disabled" yaml:"disabled,omitempty"`
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ProjectDir is the directory the configuration file is looked up in.
	ProjectDir string
	// ConfigFilePath forces loading from a specific file when set.
	ConfigFilePath string
}

// DefaultConfig returns the configuration used when there is no file.
func DefaultConfig() *Config {
	return &Config{
		RunnerFile:  runnerfile.DefaultFilename,
		PackageFile: "package.json",
		SelfCommand: runner.DefaultSelfCommand,
		Host: HostConfig{
			Binary:     host.DefaultBinary,
			PluginName: host.DefaultPluginName,
		},
	}
}

// Load reads the configuration. A missing file is not an error, unless it was
// explicitly requested with ConfigFilePath.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("runner_file", defaults.RunnerFile)
	v.SetDefault("base_path", defaults.BasePath)
	v.SetDefault("package_file", defaults.PackageFile)
	v.SetDefault("self_command", defaults.SelfCommand)
	v.SetDefault("host.binary", defaults.Host.Binary)
	v.SetDefault("host.plugin_name", defaults.Host.PluginName)
	v.SetDefault("host.disabled", defaults.Host.Disabled)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if opts.ConfigFilePath != "" {
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		v.SetConfigFile(opts.ConfigFilePath)
	} else {
		v.SetConfigFile(filepath.Join(opts.ProjectDir, FileName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFilePath != "" || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RunnerFile == "" {
		return fmt.Errorf("runner_file is required")
	}
	if strings.ContainsRune(c.RunnerFile, filepath.Separator) {
		return fmt.Errorf("runner_file must be a file name, not a path: %s", c.RunnerFile)
	}
	if c.Host.Binary == "" {
		return fmt.Errorf("host.binary is required")
	}
	if c.SelfCommand == "" {
		return fmt.Errorf("self_command is required")
	}
	return nil
}

// ResolveBasePath returns the directory executables are resolved from.
// Precedence: CLI flag > base_path > project directory.
func (c *Config) ResolveBasePath(projectDir, flagValue string) string {
	basePath := flagValue
	if basePath == "" {
		basePath = c.BasePath
	}
	if basePath == "" {
		return projectDir
	}
	if filepath.IsAbs(basePath) {
		return basePath
	}
	return filepath.Join(projectDir, basePath)
}

// ResolvePackageFile returns the path to the package file.
func (c *Config) ResolvePackageFile(projectDir string) string {
	if filepath.IsAbs(c.PackageFile) {
		return c.PackageFile
	}
	return filepath.Join(projectDir, c.PackageFile)
}

// Save writes the configuration as YAML, atomically.
func (c *Config) Save(path string) error {
	return c.save(path, xos.WriteFile)
}

// SaveWithBackup is Save, keeping the previous file as path.bak.
func (c *Config) SaveWithBackup(path string) error {
	return c.save(path, xos.WriteFileWithBackup)
}

func (c *Config) save(path string, write func(string, []byte, os.FileMode) error) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := write(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
