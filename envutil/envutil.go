// Package envutil reads typed configuration from environment variables.
package envutil

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"
)

// get looks the key up in ctx overrides first, then in the process environment.
func get(ctx context.Context, key string) Reader[string] {
	if val, ok := getEnvOverride(ctx, key); ok {
		return Reader[string]{key: key, present: true, value: val}
	}

	val, ok := os.LookupEnv(key)

	return Reader[string]{
		key:     key,
		present: ok,
		value:   val,
	}
}

func apply[T any](rdr Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		rdr = opt(rdr)
	}

	return rdr
}

// String reads a string variable.
func String(ctx context.Context, key string, opts ...Option[string]) Reader[string] {
	return apply(get(ctx, key), opts)
}

// Bool reads a boolean variable (strconv.ParseBool syntax).
func Bool(ctx context.Context, key string, opts ...Option[bool]) Reader[bool] {
	return apply(Map(get(ctx, key), strconv.ParseBool), opts)
}

// Int reads an integer variable.
func Int(ctx context.Context, key string, opts ...Option[int]) Reader[int] {
	return apply(Map(get(ctx, key), strconv.Atoi), opts)
}

// Duration reads a time.Duration variable ("250ms", "5s").
func Duration(ctx context.Context, key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(get(ctx, key), time.ParseDuration), opts)
}

// SlogLevel reads a log level ("debug", "info", "warn", "error", or "info+2").
func SlogLevel(ctx context.Context, key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	return apply(Map(get(ctx, key), func(s string) (slog.Level, error) {
		var level slog.Level

		err := level.UnmarshalText([]byte(s))

		return level, err
	}), opts)
}

// URL reads an absolute URL.
func URL(ctx context.Context, key string, opts ...Option[*url.URL]) Reader[*url.URL] {
	return apply(Map(get(ctx, key), url.Parse), opts)
}
