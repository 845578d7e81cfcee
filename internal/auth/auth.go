// Package auth carries the verified request identity and gates operations
// by role. Credential verification happens upstream in the token
// middleware; this package is purely a predicate over the resolved
// identity.
package auth

import (
	"context"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/model"
)

// Identity is the verified subject of the current request.
type Identity struct {
	UserID string
	Email  string
	Role   model.Role
}

type identityContextKey struct{}

// WithIdentity attaches a verified identity to the request context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// FromContext returns the request identity, if any. Anonymous requests
// carry none.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}

// RequireAuthenticated returns the request identity or an Unauthenticated
// error when none is present.
func RequireAuthenticated(ctx context.Context) (Identity, error) {
	identity, ok := FromContext(ctx)
	if !ok {
		return Identity{}, apperrors.Unauthenticated("authentication required")
	}
	return identity, nil
}

// RequireRole returns the identity when its role is in the allowed set.
// Missing identity fails with Unauthenticated before the role is checked;
// an insufficient role fails with Forbidden.
func RequireRole(ctx context.Context, allowed ...model.Role) (Identity, error) {
	identity, err := RequireAuthenticated(ctx)
	if err != nil {
		return Identity{}, err
	}
	for _, role := range allowed {
		if identity.Role == role {
			return identity, nil
		}
	}
	return Identity{}, apperrors.Forbidden("insufficient role for this operation")
}

// RequireAdmin is shorthand for RequireRole(ctx, model.RoleAdmin).
func RequireAdmin(ctx context.Context) (Identity, error) {
	return RequireRole(ctx, model.RoleAdmin)
}
