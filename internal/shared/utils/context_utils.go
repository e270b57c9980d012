// Package utils moves request identity in and out of context.Context using
// the keys in contextkeys.
package utils

import (
	"context"

	"pass-questions/internal/shared/contextkeys"
)

// WithSession stores the signed-in caller's identity.
func WithSession(ctx context.Context, uid, email, role, sessionID string) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, uid)
	ctx = context.WithValue(ctx, contextkeys.UserEmailKey, email)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, role)
	return context.WithValue(ctx, contextkeys.SessionIDKey, sessionID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithOperation labels log lines written with logger.WithContext(ctx).
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

func stringValue(ctx context.Context, key interface{}) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// UserID is the caller's uid, or "" for anonymous requests.
func UserID(ctx context.Context) string { return stringValue(ctx, contextkeys.UserIDKey) }

func RequestID(ctx context.Context) string { return stringValue(ctx, contextkeys.RequestIDKey) }

// IsAdmin reports whether the caller's session role is admin.
func IsAdmin(ctx context.Context) bool {
	return stringValue(ctx, contextkeys.UserRoleKey) == "admin"
}
