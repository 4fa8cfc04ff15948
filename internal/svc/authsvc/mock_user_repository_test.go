package authsvc_test

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/repo/user"
)

var ErrRepoError = errors.New("repository error")

// mockUserRepository implements user.Repository for testing.
type mockUserRepository struct {
	users map[string]*domain.User
	err   error
	m     sync.Mutex
}

var _ user.Repository = (*mockUserRepository)(nil)

func newMockUserRepo() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()

	m.err = err
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, false, m.err
	}

	u, exists := m.users[username]
	if !exists {
		return nil, false, nil
	}

	clone := *u

	return &clone, true, nil
}

func (m *mockUserRepository) ListUsers(_ context.Context) ([]domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	return users, nil
}

func (m *mockUserRepository) CreateUser(_ context.Context, candidate domain.NewUser) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	if _, exists := m.users[candidate.Username]; exists {
		return nil, domain.ErrUserAlreadyExists
	}

	u := &domain.User{
		ID:             int64(len(m.users) + 1),
		Username:       candidate.Username,
		PasswordHash:   candidate.PasswordHash,
		Email:          candidate.Email,
		BirthDate:      candidate.BirthDate,
		FavoriteMovies: []string{},
		CreatedAt:      time.Now(),
	}
	m.users[u.Username] = u

	clone := *u

	return &clone, nil
}

func (m *mockUserRepository) UpdateUser(
	_ context.Context, username string, update domain.UserUpdate,
) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	u, exists := m.users[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	if update.Username != nil && *update.Username != username {
		if _, taken := m.users[*update.Username]; taken {
			return nil, domain.ErrUserAlreadyExists
		}

		delete(m.users, username)
		u.Username = *update.Username
		m.users[u.Username] = u
	}

	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}

	if update.Email != nil {
		u.Email = *update.Email
	}

	if update.BirthDate != nil {
		u.BirthDate = update.BirthDate
	}

	clone := *u

	return &clone, nil
}

func (m *mockUserRepository) DeleteUser(_ context.Context, username string) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}

	if _, exists := m.users[username]; !exists {
		return domain.ErrUserNotFound
	}

	delete(m.users, username)

	return nil
}

func (m *mockUserRepository) AddFavorite(_ context.Context, username, movieID string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	u, exists := m.users[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	if !slices.Contains(u.FavoriteMovies, movieID) {
		u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	}

	clone := *u

	return &clone, nil
}

func (m *mockUserRepository) RemoveFavorite(_ context.Context, username, movieID string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()

	u, exists := m.users[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	kept := u.FavoriteMovies[:0]
	for _, id := range u.FavoriteMovies {
		if id != movieID {
			kept = append(kept, id)
		}
	}

	u.FavoriteMovies = kept
	clone := *u

	return &clone, nil
}
