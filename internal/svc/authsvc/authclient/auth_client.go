package authclient

import (
	"context"

	"github.com/mkrupp/myflix/internal/domain"
)

// AuthClient defines the interface for validating authentication tokens against
// a remote auth service. It satisfies the request guard's Authenticator.
type AuthClient interface {
	// Authenticate checks the given token and returns the identity it names.
	// Returns domain.ErrAuthTokenExpired, domain.ErrInvalidAuthToken or
	// domain.ErrInvalidCredentials when the token is refused, and
	// domain.ErrStoreUnavailable when the auth service cannot answer.
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}
