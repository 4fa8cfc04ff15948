package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/infra/logging"
	"github.com/mkrupp/myflix/internal/repo/store"
)

// SQLUserRepository implements Repository on top of store.DB (sqlite or postgres).
type SQLUserRepository struct {
	db  *store.DB
	log logging.Logger
	now func() time.Time
}

var _ Repository = (*SQLUserRepository)(nil)

// SQLUserRepositoryFactory creates a factory function that returns a new SQLUserRepository.
// The factory function implements the RepositoryFactory type.
func SQLUserRepositoryFactory(db *store.DB) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLUserRepository(db), nil
	}
}

// NewSQLUserRepository creates a new SQLUserRepository on an opened and migrated database.
func NewSQLUserRepository(db *store.DB) *SQLUserRepository {
	return &SQLUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sql_user_repository").With(logging.Group("db", "dialect", db.Dialect)),
		now: time.Now,
	}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectUser = "SELECT id, username, password_hash, email, birth_date, created_at FROM users"

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		user      domain.User
		birthDate sql.NullString
		createdAt int64
	)

	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &birthDate, &createdAt); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if birthDate.Valid && birthDate.String != "" {
		date, err := domain.ParseDate(birthDate.String)
		if err != nil {
			return nil, fmt.Errorf("birth date: %w", err)
		}

		user.BirthDate = &date
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	user.FavoriteMovies = []string{}

	return &user, nil
}

func (r *SQLUserRepository) getUser(ctx context.Context, q queryer, username string) (*domain.User, bool, error) {
	user, err := scanUser(q.QueryRowContext(ctx, r.db.Rebind(selectUser+" WHERE username = ?"), username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", store.Wrap(err))
	}

	favorites, err := r.favorites(ctx, q, user.ID)
	if err != nil {
		return nil, false, err
	}

	user.FavoriteMovies = favorites

	return user, true, nil
}

func (r *SQLUserRepository) favorites(ctx context.Context, q queryer, userID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		r.db.Rebind("SELECT movie_id FROM user_favorites WHERE user_id = ? ORDER BY position"),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", store.Wrap(err))
	}
	defer rows.Close()

	favorites := []string{}

	for rows.Next() {
		var movieID string
		if err := rows.Scan(&movieID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}

		favorites = append(favorites, movieID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", store.Wrap(err))
	}

	return favorites, nil
}

// GetUserByUsername implements Repository.GetUserByUsername.
func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	return r.getUser(ctx, r.db, username)
}

// ListUsers implements Repository.ListUsers.
func (r *SQLUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+" ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", store.Wrap(err))
	}
	defer rows.Close()

	var (
		users = []domain.User{}
		index = make(map[int64]int)
	)

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		index[user.ID] = len(users)
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", store.Wrap(err))
	}

	favRows, err := r.db.QueryContext(ctx, "SELECT user_id, movie_id FROM user_favorites ORDER BY user_id, position")
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", store.Wrap(err))
	}
	defer favRows.Close()

	for favRows.Next() {
		var (
			userID  int64
			movieID string
		)

		if err := favRows.Scan(&userID, &movieID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}

		if i, ok := index[userID]; ok {
			users[i].FavoriteMovies = append(users[i].FavoriteMovies, movieID)
		}
	}

	if err := favRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", store.Wrap(err))
	}

	return users, nil
}

// CreateUser implements Repository.CreateUser.
func (r *SQLUserRepository) CreateUser(ctx context.Context, candidate domain.NewUser) (_ *domain.User, err error) {
	log := r.log.With(logging.Group("user", "username", candidate.Username))

	defer func() {
		if err != nil && !errors.Is(err, domain.ErrUserAlreadyExists) {
			log.ErrorContext(ctx, "create user failed", "error", err)
		}
	}()

	unlock := r.db.LockWrites()
	defer unlock()

	var birthDate sql.NullString
	if candidate.BirthDate != nil {
		birthDate = sql.NullString{String: candidate.BirthDate.String(), Valid: true}
	}

	createdAt := r.now()

	var id int64

	err = r.db.QueryRowContext(ctx,
		r.db.Rebind(`INSERT INTO users (username, password_hash, email, birth_date, created_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
		candidate.Username,
		candidate.PasswordHash,
		candidate.Email,
		birthDate,
		createdAt.Unix(),
	).Scan(&id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrUserAlreadyExists, err)
		}

		return nil, fmt.Errorf("insert user: %w", store.Wrap(err))
	}

	return &domain.User{
		ID:             id,
		Username:       candidate.Username,
		PasswordHash:   candidate.PasswordHash,
		Email:          candidate.Email,
		BirthDate:      candidate.BirthDate,
		FavoriteMovies: []string{},
		CreatedAt:      time.Unix(createdAt.Unix(), 0),
	}, nil
}

// UpdateUser implements Repository.UpdateUser.
func (r *SQLUserRepository) UpdateUser(
	ctx context.Context,
	username string,
	update domain.UserUpdate,
) (*domain.User, error) {
	var (
		sets []string
		args []any
	)

	if update.Username != nil {
		sets, args = append(sets, "username = ?"), append(args, *update.Username)
	}

	if update.PasswordHash != nil {
		sets, args = append(sets, "password_hash = ?"), append(args, *update.PasswordHash)
	}

	if update.Email != nil {
		sets, args = append(sets, "email = ?"), append(args, *update.Email)
	}

	if update.BirthDate != nil {
		sets, args = append(sets, "birth_date = ?"), append(args, update.BirthDate.String())
	}

	if len(sets) == 0 {
		user, ok, err := r.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, err
		} else if !ok {
			return nil, domain.ErrUserNotFound
		}

		return user, nil
	}

	unlock := r.db.LockWrites()
	defer unlock()

	var updated *domain.User

	err := r.db.InTx(ctx, func(tx *sql.Tx) error {
		query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE username = ?"

		res, err := tx.ExecContext(ctx, r.db.Rebind(query), append(args, username)...)
		if err != nil {
			if store.IsUniqueViolation(err) {
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			}

			return fmt.Errorf("update user: %w", store.Wrap(err))
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if n == 0 {
			return domain.ErrUserNotFound
		}

		current := username
		if update.Username != nil {
			current = *update.Username
		}

		user, ok, err := r.getUser(ctx, tx, current)
		if err != nil {
			return err
		} else if !ok {
			return domain.ErrUserNotFound
		}

		updated = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteUser implements Repository.DeleteUser.
func (r *SQLUserRepository) DeleteUser(ctx context.Context, username string) error {
	unlock := r.db.LockWrites()
	defer unlock()

	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		var id int64

		err := tx.QueryRowContext(ctx, r.db.Rebind("SELECT id FROM users WHERE username = ?"), username).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrUserNotFound
			}

			return fmt.Errorf("query user: %w", store.Wrap(err))
		}

		if _, err := tx.ExecContext(ctx, r.db.Rebind("DELETE FROM user_favorites WHERE user_id = ?"), id); err != nil {
			return fmt.Errorf("delete favorites: %w", store.Wrap(err))
		}

		if _, err := tx.ExecContext(ctx, r.db.Rebind("DELETE FROM users WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete user: %w", store.Wrap(err))
		}

		return nil
	})
}

// AddFavorite implements Repository.AddFavorite. Favorites are a set kept in insertion order.
func (r *SQLUserRepository) AddFavorite(ctx context.Context, username, movieID string) (*domain.User, error) {
	return r.mutateFavorites(ctx, username, func(tx *sql.Tx, userID int64) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO user_favorites (user_id, movie_id, position)
			SELECT CAST(? AS BIGINT), CAST(? AS TEXT), COALESCE(MAX(position), 0) + 1
			FROM user_favorites WHERE user_id = ?
			ON CONFLICT (user_id, movie_id) DO NOTHING`),
			userID, movieID, userID,
		)
		if err != nil {
			return fmt.Errorf("insert favorite: %w", store.Wrap(err))
		}

		return nil
	})
}

// RemoveFavorite implements Repository.RemoveFavorite.
func (r *SQLUserRepository) RemoveFavorite(ctx context.Context, username, movieID string) (*domain.User, error) {
	return r.mutateFavorites(ctx, username, func(tx *sql.Tx, userID int64) error {
		_, err := tx.ExecContext(ctx,
			r.db.Rebind("DELETE FROM user_favorites WHERE user_id = ? AND movie_id = ?"),
			userID, movieID,
		)
		if err != nil {
			return fmt.Errorf("delete favorite: %w", store.Wrap(err))
		}

		return nil
	})
}

func (r *SQLUserRepository) mutateFavorites(
	ctx context.Context,
	username string,
	mutate func(tx *sql.Tx, userID int64) error,
) (*domain.User, error) {
	unlock := r.db.LockWrites()
	defer unlock()

	var updated *domain.User

	err := r.db.InTx(ctx, func(tx *sql.Tx) error {
		var userID int64

		err := tx.QueryRowContext(ctx, r.db.Rebind("SELECT id FROM users WHERE username = ?"), username).Scan(&userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrUserNotFound
			}

			return fmt.Errorf("query user: %w", store.Wrap(err))
		}

		if err := mutate(tx, userID); err != nil {
			return err
		}

		user, ok, err := r.getUser(ctx, tx, username)
		if err != nil {
			return err
		} else if !ok {
			return domain.ErrUserNotFound
		}

		updated = user

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
