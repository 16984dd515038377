package clients

import (
	"context"
	"errors"
)

// ErrNoToken is returned when no session token is available for an authenticated call.
var ErrNoToken = errors.New("no session token available")

// TokenSource supplies the bearer token attached to authenticated backend calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type tokenCtxKey struct{}

// WithToken stores the caller's session token on ctx for ContextTokenSource.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// ContextTokenSource reads the token placed on the request context by the auth middleware.
type ContextTokenSource struct{}

func (ContextTokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := ctx.Value(tokenCtxKey{}).(string); ok && tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}

// StaticTokenSource always returns the same token.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}
