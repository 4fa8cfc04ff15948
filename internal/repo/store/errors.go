package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/myflix/internal/domain"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err stems from a UNIQUE or PRIMARY KEY constraint.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		default:
			return false
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}

// IsUnavailable reports whether err means the database could not be reached.
func IsUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return true
		}
	}

	return false
}

// Classify returns domain.ErrStoreUnavailable for connectivity failures and nil otherwise,
// so callers can errors.Join it onto the original error.
func Classify(err error) error {
	if err != nil && IsUnavailable(err) {
		return domain.ErrStoreUnavailable
	}

	return nil
}

// Wrap annotates err with domain.ErrStoreUnavailable when applicable.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	if class := Classify(err); class != nil {
		return errors.Join(err, class)
	}

	return err
}
