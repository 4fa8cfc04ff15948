package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkrupp/myflix/internal/domain"
	context_ "github.com/mkrupp/myflix/internal/infra/context"
	"github.com/mkrupp/myflix/internal/infra/logging"
)

// AuthorizationHeader carries the bearer token.
const AuthorizationHeader = "Authorization"

const bearerScheme = "bearer"

// Authenticator resolves a presented bearer token to a verified identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Returns domain.ErrNoAuthToken if the header is absent and
// domain.ErrInvalidAuthToken if it uses another scheme.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get(AuthorizationHeader))
	if header == "" {
		return "", domain.ErrNoAuthToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", domain.ErrInvalidAuthToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrNoAuthToken
	}

	return token, nil
}

// AuthorizingMiddleware creates middleware that validates authentication tokens.
// Requests without a valid token in the Authorization header are rejected with 401
// before reaching next. On success, the identity is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	authenticator Authenticator,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			log.WarnContext(r.Context(), "no usable token", "error", err)
			WriteError(w, err)

			return
		}

		identity, err := authenticator.Authenticate(r.Context(), token)
		if err != nil {
			log.WarnContext(r.Context(), "authenticate failed", "error", err)
			WriteError(w, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithIdentity(r.Context(), identity)))
	})
}

// RequireAuth returns AuthorizingMiddleware as a Middleware.
func RequireAuth(authenticator Authenticator, log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return AuthorizingMiddleware(next, authenticator, log)
	}
}
