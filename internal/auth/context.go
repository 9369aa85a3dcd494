package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// apiKeyContextKey is the context key for the caller's API key.
	apiKeyContextKey contextKey = "api_key"
)

// ContextWithAPIKey stores the presented API key in the context.
func ContextWithAPIKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, apiKeyContextKey, key)
}

// APIKeyFromContext returns the presented API key.
// Returns empty string if none was presented.
func APIKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(apiKeyContextKey).(string)
	return key
}
