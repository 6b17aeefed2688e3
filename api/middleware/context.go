package middleware

import (
	"context"
	"net/http"

	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

type contextKey string

const ctxUserID contextKey = "user_id"

// WithUserID seeds the context the way the Auth middleware does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserID returns the authenticated user id seeded by the Auth middleware.
func UserID(r *http.Request) (string, error) {
	id, ok := r.Context().Value(ctxUserID).(string)
	if !ok || id == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	return id, nil
}
