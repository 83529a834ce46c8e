package envutil

import "context"

type contextKey string

// WithEnvOverride returns a context in which key reads as value, regardless of
// the process environment. Overrides only affect readers given this context.
func WithEnvOverride(ctx context.Context, key string, value string) context.Context {
	return context.WithValue(ctx, contextKey(key), value)
}

func getEnvOverride(ctx context.Context, key string) (string, bool) {
	if ctx == nil {
		return "", false
	}

	val, ok := ctx.Value(contextKey(key)).(string)

	return val, ok
}
