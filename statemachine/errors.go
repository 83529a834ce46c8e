package statemachine

import "errors"

// Configuration errors. The machine itself never returns errors: operations
// attempted at the wrong time are ignored.
var (
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigNameRequired indicates that a configuration name is required.
	ErrConfigNameRequired = errors.New("config name is required")
	// ErrInvalidLogLevel indicates that the configured hook log level is not a slog level.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrNoConfigLoader indicates that no config loader is registered.
	ErrNoConfigLoader = errors.New("no config loader registered; use SetConfigLoader() or provide a file path")
)
