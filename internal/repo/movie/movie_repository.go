package movie

import (
	"context"

	"github.com/mkrupp/myflix/internal/domain"
)

// Repository defines read access to the movie catalog plus inserts for seeding.
type Repository interface {
	// ListMovies returns the whole catalog ordered by title.
	ListMovies(ctx context.Context) ([]domain.Movie, error)

	// GetMovieByID returns the movie and true if found, or nil and false if not.
	GetMovieByID(ctx context.Context, id string) (*domain.Movie, bool, error)

	// GetMovieByTitle returns the movie with the exact title.
	GetMovieByTitle(ctx context.Context, title string) (*domain.Movie, bool, error)

	// GetGenreByName returns the genre of the first movie carrying it.
	GetGenreByName(ctx context.Context, name string) (*domain.Genre, bool, error)

	// GetDirectorByName returns the director of the first movie they directed.
	GetDirectorByName(ctx context.Context, name string) (*domain.Director, bool, error)

	// CreateMovie inserts m, assigning an ID when empty.
	// Returns ErrMovieAlreadyExists if the title is taken.
	CreateMovie(ctx context.Context, m domain.Movie) (*domain.Movie, error)
}
