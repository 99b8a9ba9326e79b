package auth

import (
	"context"
)

type contextKey struct{}

var claimsKey contextKey

// WithClaims returns a context carrying the authenticated claims.
// The JWT middleware attaches claims here so downstream collaborators
// (e.g. the approval role directory) can resolve the caller's roles
// without another identity lookup.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
