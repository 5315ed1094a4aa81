package middleware

import (
	"context"
	"time"
)

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxRole        contextKey = "actor_role"
	ctxEmail       contextKey = "email"
	ctxName        contextKey = "name"
	ctxTokenID     contextKey = "token_id"
	ctxTokenExpiry contextKey = "token_expiry"
)

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

func EmailFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxEmail)
}

func NameFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxName)
}

// TokenFromContext returns the presented token id and its expiry.
func TokenFromContext(ctx context.Context) (string, time.Time) {
	id := stringValue(ctx, ctxTokenID)
	if ctx == nil {
		return id, time.Time{}
	}
	exp, _ := ctx.Value(ctxTokenExpiry).(time.Time)
	return id, exp
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
