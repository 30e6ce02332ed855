package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the caller established from a verified bearer token.
type Identity struct {
	UserID   uuid.UUID
	Roles    []string
	TenantID *uuid.UUID
}

// HasAnyRole reports whether the identity holds at least one of allowed.
func (i Identity) HasAnyRole(allowed ...string) bool {
	for _, have := range i.Roles {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
