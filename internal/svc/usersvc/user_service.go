package usersvc

import (
	"context"

	"github.com/mkrupp/myflix/internal/domain"
)

// UserService defines profile and favorites use cases. The caller is the identity
// the request guard attached to ctx; mutations are allowed on the caller's own
// account only and fail with domain.ErrForbidden otherwise.
type UserService interface {
	// ListUsers returns every account without password hashes.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUser returns the named account or domain.ErrUserNotFound.
	GetUser(ctx context.Context, username string) (*domain.User, error)

	// UpdateUser applies patch to the named account. Present fields are validated
	// with the registration rules and a new password is re-hashed.
	UpdateUser(ctx context.Context, username string, patch domain.ProfilePatch) (*domain.User, error)

	// DeleteUser removes the named account and its favorites.
	DeleteUser(ctx context.Context, username string) error

	// AddFavorite adds a catalog movie to the user's favorites.
	// Returns domain.ErrMovieNotFound if movieID is not in the catalog.
	AddFavorite(ctx context.Context, username, movieID string) (*domain.User, error)

	// RemoveFavorite drops movieID from the user's favorites.
	RemoveFavorite(ctx context.Context, username, movieID string) (*domain.User, error)
}
