package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	userIDKey   ctxKey = "user_id"
	usernameKey ctxKey = "username"
	tokenKey    ctxKey = "token"
	scopeKey    ctxKey = "feed_scope"

	// TraceIDKey is the log field name carrying the trace id.
	TraceIDKey = "trace_id"
)

// GetValue retrieves a value from the context.
func GetValue(ctx context.Context, key ctxKey) any {
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}

// SetValue sets a value to the context.
func SetValue(ctx context.Context, key ctxKey, val any) context.Context {
	return context.WithValue(ctx, key, val)
}

// SetUserID sets user id to context.Context.
func SetUserID(ctx context.Context, uid string) context.Context {
	return SetValue(ctx, userIDKey, uid)
}

// GetUserID gets user id from context.Context.
func GetUserID(ctx context.Context) string {
	if uid, ok := GetValue(ctx, userIDKey).(string); ok {
		return uid
	}
	return ""
}

// SetUsername sets the signed-in username to context.Context.
func SetUsername(ctx context.Context, username string) context.Context {
	return SetValue(ctx, usernameKey, username)
}

// GetUsername gets the signed-in username from context.Context.
func GetUsername(ctx context.Context) string {
	if name, ok := GetValue(ctx, usernameKey).(string); ok {
		return name
	}
	return ""
}

// SetToken sets token to context.Context.
func SetToken(ctx context.Context, token string) context.Context {
	return SetValue(ctx, tokenKey, token)
}

// GetToken gets token from context.Context.
func GetToken(ctx context.Context) string {
	if token, ok := GetValue(ctx, tokenKey).(string); ok {
		return token
	}
	return ""
}

// SetScope records the feed scope key a request is working on.
func SetScope(ctx context.Context, scope string) context.Context {
	return SetValue(ctx, scopeKey, scope)
}

// GetScope returns the feed scope key, if any.
func GetScope(ctx context.Context) string {
	if s, ok := GetValue(ctx, scopeKey).(string); ok {
		return s
	}
	return ""
}

// traceIDCtxKey is kept apart from the exported log field name.
const traceIDCtxKey ctxKey = TraceIDKey

// GetTraceID gets trace id from context.Context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := GetValue(ctx, traceIDCtxKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets trace id to context.Context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, traceIDCtxKey, traceID)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}
