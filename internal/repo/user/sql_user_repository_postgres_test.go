package user_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/repo/store"
	"github.com/mkrupp/myflix/internal/repo/user"
)

func newPostgresRepoWithMock(t *testing.T) (*user.SQLUserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return user.NewSQLUserRepository(store.New(db, store.DialectPostgres)), mock
}

func TestPostgresUserRepository_GetUserByUsername(t *testing.T) {
	t.Parallel()

	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT id, username, password_hash, email, birth_date, created_at FROM users WHERE username = \$1$`).
		WithArgs("alice1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "email", "birth_date", "created_at"}).
			AddRow(int64(7), "alice1", "hash", "a@x.com", nil, int64(1700000000)))

	mock.ExpectQuery(`(?s)^SELECT movie_id FROM user_favorites WHERE user_id = \$1 ORDER BY position$`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"movie_id"}).AddRow("m1").AddRow("m2"))

	got, ok, err := repo.GetUserByUsername(context.Background(), "alice1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)
	assert.Nil(t, got.BirthDate)
	assert.Equal(t, []string{"m1", "m2"}, got.FavoriteMovies)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_CreateUser_UniqueViolation(t *testing.T) {
	t.Parallel()

	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT INTO users \(username, password_hash, email, birth_date, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\) RETURNING id$`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.CreateUser(context.Background(), candidate("alice1"))
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_StoreUnavailable(t *testing.T) {
	t.Parallel()

	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`^SELECT id, username`).
		WithArgs("alice1").
		WillReturnError(&net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")})

	_, _, err := repo.GetUserByUsername(context.Background(), "alice1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestPostgresUserRepository_DeleteMissing(t *testing.T) {
	t.Parallel()

	repo, mock := newPostgresRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT id FROM users WHERE username = \$1$`).
		WithArgs("ghost1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.DeleteUser(context.Background(), "ghost1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
