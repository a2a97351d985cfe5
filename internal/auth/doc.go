// Package auth provides JWT authentication for the taskline API.
//
// Users authenticate with HS256-signed JWT tokens issued at login. The
// token's "sub" claim carries the user ID, which the HTTP middleware
// extracts and attaches to the request context via WithOwner/OwnerFromContext.
//
// Owner-scoped routes additionally pass through RequireOwner, which
// rejects requests whose path owner does not match the token subject.
package auth
