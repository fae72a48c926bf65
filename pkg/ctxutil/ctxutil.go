// Package ctxutil carries the authenticated user through request contexts.
package ctxutil

import (
	"context"

	pkgerrors "admissions/pkg/errors"
)

type userIDKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromCtx returns the user id and whether one is present.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// RequireUserID is the identity guard run before any mutation.
func RequireUserID(ctx context.Context) (string, error) {
	id, ok := UserIDFromCtx(ctx)
	if !ok {
		return "", pkgerrors.ErrUnauthorized
	}
	return id, nil
}
