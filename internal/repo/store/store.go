// Package store opens the shared database behind the user and movie
// repositories and keeps its schema current.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/mkrupp/myflix/internal/infra/logging"
	"github.com/mkrupp/myflix/internal/repo/store/migrations"
)

// Dialect names a supported database backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ErrUnsupportedDriver is returned for an unknown Config.Driver.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config holds the database connection settings.
type Config struct {
	// Driver selects the backend ("sqlite" or "postgres")
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	// DSN is a file path for sqlite or a connection URL for postgres
	DSN string `env:"DSN" envDefault:"var/storage/myflix.db"`

	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"    envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DB is a migrated database handle shared by the repositories.
type DB struct {
	*sql.DB

	Dialect Dialect

	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

//nolint:gochecknoglobals
var gooseLock sync.Mutex // goose keeps its base FS and dialect in package state

// Open connects to the configured database, verifies it is reachable and
// applies pending migrations.
func Open(ctx context.Context, cfg Config) (_ *DB, err error) {
	log := logging.GetLogger("repo.store").With(logging.Group("db", "driver", cfg.Driver))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "open store failed", "error", err)
		} else {
			log.DebugContext(ctx, "store opened")
		}
	}()

	var (
		dialect    Dialect
		driverName string
		dsn        = cfg.DSN
	)

	switch Dialect(strings.ToLower(cfg.Driver)) {
	case DialectSQLite:
		dialect, driverName = DialectSQLite, "sqlite"
		dsn = sqliteDSN(dsn)
	case DialectPostgres:
		dialect, driverName = DialectPostgres, "pgx"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, errors.Join(fmt.Errorf("ping db: %w", err), Classify(err))
	}

	db := New(sqlDB, dialect)

	if err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// New wraps an already opened handle without touching its schema.
func New(sqlDB *sql.DB, dialect Dialect) *DB {
	return &DB{
		DB:        sqlDB,
		Dialect:   dialect,
		writeLock: new(sync.Mutex),
	}
}

// Migrate applies every pending embedded migration for the dialect.
func (db *DB) Migrate(ctx context.Context) error {
	gooseLock.Lock()
	defer gooseLock.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	gooseDialect := "sqlite3"
	if db.Dialect == DialectPostgres {
		gooseDialect = "pgx"
	}

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, string(db.Dialect)); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// LockWrites serializes writers on sqlite and is a no-op elsewhere.
// The returned func releases the lock.
func (db *DB) LockWrites() func() {
	if db.Dialect != DialectSQLite {
		return func() {}
	}

	db.writeLock.Lock()

	return db.writeLock.Unlock
}

// Rebind rewrites "?" placeholders into the dialect's positional form.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}

	var (
		out strings.Builder
		n   int
	)

	out.Grow(len(query) + 8)

	for _, r := range query {
		if r != '?' {
			out.WriteRune(r)

			continue
		}

		n++
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
	}

	return out.String()
}

// InTx runs fn inside a transaction, committing on success and rolling back otherwise.
func (db *DB) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(fmt.Errorf("begin tx: %w", err), Classify(err))
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Join(fmt.Errorf("commit tx: %w", err), Classify(err))
	}

	return nil
}

func sqliteDSN(path string) string {
	const pragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}

	return "file:" + path + "?" + pragmas
}
