package usersvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/myflix/internal/domain"
	context_ "github.com/mkrupp/myflix/internal/infra/context"
	"github.com/mkrupp/myflix/internal/infra/logging"
	"github.com/mkrupp/myflix/internal/repo/movie"
	"github.com/mkrupp/myflix/internal/repo/user"
	"github.com/mkrupp/myflix/internal/svc/authsvc"
)

// RepoUserService implements UserService on top of the user and movie repositories.
type RepoUserService struct {
	users  user.Repository
	movies movie.Repository
	hasher authsvc.PasswordHasher
	log    logging.Logger
}

var _ UserService = (*RepoUserService)(nil)

// NewRepoUserService creates a RepoUserService. hasher must be the one used at
// registration so re-hashed passwords verify at login.
func NewRepoUserService(
	userRepoFactory user.RepositoryFactory,
	movies movie.Repository,
	hasher authsvc.PasswordHasher,
) (*RepoUserService, error) {
	users, err := userRepoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &RepoUserService{
		users:  users,
		movies: movies,
		hasher: hasher,
		log:    logging.GetLogger("svc.usersvc.repo_user_service"),
	}, nil
}

// authorizeOwner fails unless the caller in ctx is username.
func authorizeOwner(ctx context.Context, username string) error {
	caller, ok := context_.UsernameFromContext(ctx)
	if !ok {
		return domain.ErrNoAuthToken
	}

	if caller != username {
		return fmt.Errorf("%w: %s may not modify %s", domain.ErrForbidden, caller, username)
	}

	return nil
}

// ListUsers implements UserService.ListUsers.
func (s *RepoUserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "list users failed", "error", err)

		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// GetUser implements UserService.GetUser.
func (s *RepoUserService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	u, ok, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, domain.ErrUserNotFound
	}

	return u, nil
}

// UpdateUser implements UserService.UpdateUser.
func (s *RepoUserService) UpdateUser(
	ctx context.Context, username string, patch domain.ProfilePatch,
) (_ *domain.User, err error) {
	log := s.log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "update user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user updated")
		}
	}()

	if err := authorizeOwner(ctx, username); err != nil {
		return nil, err
	}

	if err := authsvc.ValidateProfilePatch(patch); err != nil {
		return nil, err
	}

	update := domain.UserUpdate{
		Username: patch.Username,
		Email:    patch.Email,
	}

	if patch.Password != nil {
		passwordHash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}

		update.PasswordHash = &passwordHash
	}

	if patch.BirthDate != nil && *patch.BirthDate != "" {
		birthDate, err := domain.ParseDate(*patch.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("birth date: %w", err)
		}

		update.BirthDate = &birthDate
	}

	if update.IsEmpty() {
		return s.GetUser(ctx, username)
	}

	updated, err := s.users.UpdateUser(ctx, username, update)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return updated, nil
}

// DeleteUser implements UserService.DeleteUser.
func (s *RepoUserService) DeleteUser(ctx context.Context, username string) (err error) {
	log := s.log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "delete user failed", "error", err)
		} else {
			log.InfoContext(ctx, "user deleted")
		}
	}()

	if err := authorizeOwner(ctx, username); err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

// AddFavorite implements UserService.AddFavorite.
func (s *RepoUserService) AddFavorite(ctx context.Context, username, movieID string) (_ *domain.User, err error) {
	log := s.log.With(logging.Group("favorite", "username", username, "movie", movieID))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "add favorite failed", "error", err)
		} else {
			log.DebugContext(ctx, "favorite added")
		}
	}()

	if err := authorizeOwner(ctx, username); err != nil {
		return nil, err
	}

	_, ok, err := s.movies.GetMovieByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	} else if !ok {
		return nil, domain.ErrMovieNotFound
	}

	updated, err := s.users.AddFavorite(ctx, username, movieID)
	if err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}

	return updated, nil
}

// RemoveFavorite implements UserService.RemoveFavorite.
func (s *RepoUserService) RemoveFavorite(ctx context.Context, username, movieID string) (_ *domain.User, err error) {
	log := s.log.With(logging.Group("favorite", "username", username, "movie", movieID))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "remove favorite failed", "error", err)
		} else {
			log.DebugContext(ctx, "favorite removed")
		}
	}()

	if err := authorizeOwner(ctx, username); err != nil {
		return nil, err
	}

	updated, err := s.users.RemoveFavorite(ctx, username, movieID)
	if err != nil {
		return nil, fmt.Errorf("remove favorite: %w", err)
	}

	return updated, nil
}
