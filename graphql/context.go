package graphql

import (
	"context"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeyUser contextKey = "user"

// WithUser attaches the dashboard username to ctx.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, CtxKeyUser, username)
}

// UserFromContext returns the dashboard user for the current request, or "".
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUser).(string); ok {
		return v
	}
	return ""
}
