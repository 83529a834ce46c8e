package statemachine

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigLoader is an interface for loading configurations by name.
// Applications can implement this to provide embedded or custom config loading.
type ConfigLoader interface {
	LoadByName(name string) ([]byte, error)
	ListAvailable() []string
}

// defaultConfigLoader is the global config loader used by LoadConfig.
var defaultConfigLoader ConfigLoader //nolint:gochecknoglobals

// SetConfigLoader sets the default config loader for name-based loading.
func SetConfigLoader(loader ConfigLoader) {
	defaultConfigLoader = loader
}

// Config describes how a machine is observed. It has no say over the
// stack semantics.
//
//	name: game
//	metrics: true
//	tracing: false
//	logging:
//	  enabled: true
//	  hookLevel: debug
type Config struct {
	Name    string        `json:"name"    yaml:"name"`
	Metrics *bool         `json:"metrics" yaml:"metrics"`
	Tracing *bool         `json:"tracing" yaml:"tracing"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures engine logging.
type LoggingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// HookLevel is the slog level used for lifecycle hook logs ("debug" when empty).
	HookLevel string `json:"hookLevel" yaml:"hookLevel"`
}

// LoadConfig loads a machine configuration by path or name.
// Supports two modes:
//   - Path mode: a file path (containing '/', '\', or ending in '.yaml'/'.yml') is read from the filesystem
//   - Name mode: a bare name is resolved through the loader registered with SetConfigLoader
func LoadConfig(pathOrName string) (*Config, error) {
	lower := strings.ToLower(pathOrName)

	isPath := strings.Contains(pathOrName, "/") ||
		strings.Contains(pathOrName, `\`) ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml")

	if isPath {
		data, err := os.ReadFile(pathOrName) //nolint:gosec // Intentional path-based loading
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", pathOrName, err)
		}

		return LoadConfigFromBytes(data)
	}

	if defaultConfigLoader == nil {
		return nil, ErrNoConfigLoader
	}

	data, err := defaultConfigLoader.LoadByName(pathOrName)
	if err != nil {
		available := defaultConfigLoader.ListAvailable()

		return nil, fmt.Errorf("failed to load config %q (available: %v): %w", pathOrName, available, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes loads a machine configuration from YAML bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFromFS loads a configuration from a filesystem such as embed.FS.
func LoadConfigFromFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrConfigNameRequired)
	}

	if _, err := c.Logging.level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Options converts the configuration into machine options. Unset metrics and
// tracing flags keep the machine defaults.
func (c *Config) Options() []Option {
	opts := []Option{WithName(c.Name)}

	if c.Metrics != nil {
		opts = append(opts, WithMetrics(*c.Metrics))
	}

	if c.Tracing != nil {
		opts = append(opts, WithTracing(*c.Tracing))
	}

	if c.Logging.Enabled {
		level, err := c.Logging.level()
		if err != nil {
			level = slog.LevelDebug
		}

		opts = append(opts, WithLogger(NewDefaultLogger().WithHookLevel(level)))
	}

	return opts
}

func (l LoggingConfig) level() (slog.Level, error) {
	if l.HookLevel == "" {
		return slog.LevelDebug, nil
	}

	var level slog.Level

	err := level.UnmarshalText([]byte(l.HookLevel))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.HookLevel)
	}

	return level, nil
}
