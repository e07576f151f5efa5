package auth

import "context"

type identityKey struct{}

// WithIdentity returns ctx carrying the authenticated user id.
func WithIdentity(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the authenticated user id carried by ctx.
func IdentityFrom(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(identityKey{}).(uint64)
	return id, ok && id != 0
}
