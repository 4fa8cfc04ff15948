package context

import (
	"context"

	"github.com/mkrupp/myflix/internal/domain"
)

const contextKeyIdentity = contextKey("identity")

// IdentityFromContext extracts the verified caller from the context.
// Returns the identity and true if present, or a zero identity and false if not present.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(contextKeyIdentity).(domain.Identity)

	return identity, ok
}

// UsernameFromContext is a shorthand for the username of the verified caller.
func UsernameFromContext(ctx context.Context) (string, bool) {
	identity, ok := IdentityFromContext(ctx)

	return identity.Username, ok
}

// WithIdentity creates a new context carrying the verified caller.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}
