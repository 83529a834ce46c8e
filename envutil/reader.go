//nolint:ireturn
package envutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

var (
	ErrBadEnvVar     = errors.New("error parsing environment variable")
	ErrEnvVarMissing = errors.New("missing environment variable")
)

// Reader holds the outcome of reading one environment variable: whether it
// was present, the parsed value, and any parse error.
type Reader[A any] struct {
	key     string
	present bool
	err     error

	value A
}

// Key returns the name of the environment variable.
func (e Reader[A]) Key() string {
	return e.key
}

// Value returns the parsed value, or an error if the variable is missing or
// failed to parse.
func (e Reader[A]) Value() (A, error) {
	if e.err != nil {
		return e.value, fmt.Errorf("%w %s: %w", ErrBadEnvVar, e.key, e.err)
	}

	if !e.present {
		return e.value, fmt.Errorf("%w %s", ErrEnvVarMissing, e.key)
	}

	return e.value, nil
}

// ValueOrElse returns the value, or v if the variable is missing or invalid.
func (e Reader[A]) ValueOrElse(v A) A {
	value, err := e.Value()
	if err != nil {
		return v
	}

	return value
}

// ValueOrFatal returns the value or exits the process.
func (e Reader[A]) ValueOrFatal() A {
	value, err := e.Value()
	if err != nil {
		slog.Error("invalid environment", "key", e.key, "error", err)
		os.Exit(1)
	}

	return value
}

// HasValue reports whether the variable was present and parsed.
func (e Reader[A]) HasValue() bool {
	return e.present && e.err == nil
}

// WithDefault fills in v when the variable is not set. Parse errors are kept.
func (e Reader[A]) WithDefault(v A) Reader[A] {
	if e.present || e.err != nil {
		return e
	}

	return Reader[A]{
		key:     e.key,
		present: true,
		value:   v,
	}
}

// Map transforms a present value. Missing values and errors pass through.
func (e Reader[A]) Map(f func(A) (A, error)) Reader[A] {
	return Map(e, f)
}

// Map converts a Reader to another type.
func Map[A any, B any](env Reader[A], f func(A) (B, error)) Reader[B] {
	out := Reader[B]{
		key:     env.key,
		present: env.present,
		err:     env.err,
	}

	if !env.present || env.err != nil {
		return out
	}

	out.value, out.err = f(env.value)

	return out
}
