package screen

import (
	"context"

	"admissions/pkg/ctxutil"
	"admissions/pkg/errors"
)

// Identity resolves the current user for mutations.
type Identity interface {
	UserID(ctx context.Context) (string, error)
}

type IdentityFunc func(ctx context.Context) (string, error)

func (f IdentityFunc) UserID(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticIdentity is a fixed signed-in user. The empty value is signed out.
type StaticIdentity string

func (s StaticIdentity) UserID(context.Context) (string, error) {
	if s == "" {
		return "", errors.ErrUnauthorized
	}
	return string(s), nil
}

// ContextIdentity reads the user placed on the context by ctxutil.
type ContextIdentity struct{}

func (ContextIdentity) UserID(ctx context.Context) (string, error) {
	return ctxutil.RequireUserID(ctx)
}
