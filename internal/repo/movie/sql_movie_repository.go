package movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/infra/logging"
	"github.com/mkrupp/myflix/internal/repo/store"
)

// SQLMovieRepository implements Repository on top of store.DB.
type SQLMovieRepository struct {
	db  *store.DB
	log logging.Logger
}

var _ Repository = (*SQLMovieRepository)(nil)

// NewSQLMovieRepository creates a new SQLMovieRepository on an opened and migrated database.
func NewSQLMovieRepository(db *store.DB) *SQLMovieRepository {
	return &SQLMovieRepository{
		db:  db,
		log: logging.GetLogger("repo.movie.sql_movie_repository"),
	}
}

const selectMovie = `SELECT id, title, description, genre_name, genre_description,
	director_name, director_bio, director_birth, director_death, image_path, featured
	FROM movies`

func scanMovie(row interface{ Scan(dest ...any) error }) (*domain.Movie, error) {
	var m domain.Movie

	err := row.Scan(
		&m.ID, &m.Title, &m.Description,
		&m.Genre.Name, &m.Genre.Description,
		&m.Director.Name, &m.Director.Bio, &m.Director.Birth, &m.Director.Death,
		&m.ImagePath, &m.Featured,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &m, nil
}

func (r *SQLMovieRepository) getMovie(ctx context.Context, where string, arg any) (*domain.Movie, bool, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, r.db.Rebind(selectMovie+" WHERE "+where+" ORDER BY title LIMIT 1"), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query movie: %w", store.Wrap(err))
	}

	return m, true, nil
}

// ListMovies implements Repository.ListMovies.
func (r *SQLMovieRepository) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.db.QueryContext(ctx, selectMovie+" ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", store.Wrap(err))
	}
	defer rows.Close()

	movies := []domain.Movie{}

	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}

		movies = append(movies, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", store.Wrap(err))
	}

	return movies, nil
}

// GetMovieByID implements Repository.GetMovieByID.
func (r *SQLMovieRepository) GetMovieByID(ctx context.Context, id string) (*domain.Movie, bool, error) {
	return r.getMovie(ctx, "id = ?", id)
}

// GetMovieByTitle implements Repository.GetMovieByTitle.
func (r *SQLMovieRepository) GetMovieByTitle(ctx context.Context, title string) (*domain.Movie, bool, error) {
	return r.getMovie(ctx, "title = ?", title)
}

// GetGenreByName implements Repository.GetGenreByName.
func (r *SQLMovieRepository) GetGenreByName(ctx context.Context, name string) (*domain.Genre, bool, error) {
	m, ok, err := r.getMovie(ctx, "genre_name = ?", name)
	if err != nil || !ok {
		return nil, ok, err
	}

	return &m.Genre, true, nil
}

// GetDirectorByName implements Repository.GetDirectorByName.
func (r *SQLMovieRepository) GetDirectorByName(ctx context.Context, name string) (*domain.Director, bool, error) {
	m, ok, err := r.getMovie(ctx, "director_name = ?", name)
	if err != nil || !ok {
		return nil, ok, err
	}

	return &m.Director, true, nil
}

// CreateMovie implements Repository.CreateMovie.
func (r *SQLMovieRepository) CreateMovie(ctx context.Context, m domain.Movie) (_ *domain.Movie, err error) {
	defer func() {
		if err != nil && !errors.Is(err, domain.ErrMovieAlreadyExists) {
			r.log.ErrorContext(ctx, "create movie failed", "error", err, logging.Group("movie", "title", m.Title))
		}
	}()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	unlock := r.db.LockWrites()
	defer unlock()

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO movies (id, title, description,
		genre_name, genre_description, director_name, director_bio, director_birth, director_death,
		image_path, featured) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.Title, m.Description,
		m.Genre.Name, m.Genre.Description,
		m.Director.Name, m.Director.Bio, m.Director.Birth, m.Director.Death,
		m.ImagePath, m.Featured,
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			err = errors.Join(domain.ErrMovieAlreadyExists, err)
		}

		return nil, fmt.Errorf("insert movie: %w", store.Wrap(err))
	}

	return &m, nil
}
