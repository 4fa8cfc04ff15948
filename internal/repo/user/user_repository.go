package user

import (
	"context"

	"github.com/mkrupp/myflix/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error only if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// ListUsers returns every user ordered by username.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser adds a new user to the repository.
	// Returns ErrUserAlreadyExists if the username is already taken. The check
	// is the store's unique constraint, so concurrent creates cannot both succeed.
	CreateUser(ctx context.Context, candidate domain.NewUser) (*domain.User, error)

	// UpdateUser changes the non-nil fields of the named user and returns the result.
	// Returns ErrUserNotFound if absent and ErrUserAlreadyExists on a rename collision.
	UpdateUser(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error)

	// DeleteUser removes the named user and their favorites.
	// Returns ErrUserNotFound if absent.
	DeleteUser(ctx context.Context, username string) error

	// AddFavorite appends movieID to the user's favorites unless already present.
	AddFavorite(ctx context.Context, username, movieID string) (*domain.User, error)

	// RemoveFavorite drops movieID from the user's favorites; absent ids are ignored.
	RemoveFavorite(ctx context.Context, username, movieID string) (*domain.User, error)
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
