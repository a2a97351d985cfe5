// ABOUTME: Request context plumbing for the authenticated owner identity
// ABOUTME: Provides WithOwner/OwnerFromContext for propagating the user ID

package auth

import (
	"context"
)

// ownerKey is the key type for storing the authenticated user ID in context.
type ownerKey struct{}

// WithOwner returns a new context with the authenticated user ID attached.
func WithOwner(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, userID)
}

// OwnerFromContext retrieves the authenticated user ID from the context,
// returning "" if the request was not authenticated.
func OwnerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey{}).(string)
	return id
}
