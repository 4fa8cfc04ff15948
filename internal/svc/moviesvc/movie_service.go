package moviesvc

import (
	"context"

	"github.com/mkrupp/myflix/internal/domain"
)

// MovieService defines read access to the movie catalog.
type MovieService interface {
	// ListMovies returns every movie ordered by title.
	ListMovies(ctx context.Context) ([]domain.Movie, error)

	// GetMovie returns the movie with the given title or domain.ErrMovieNotFound.
	GetMovie(ctx context.Context, title string) (*domain.Movie, error)

	// GetGenre returns the named genre or domain.ErrMovieNotFound.
	GetGenre(ctx context.Context, name string) (*domain.Genre, error)

	// GetDirector returns the named director or domain.ErrMovieNotFound.
	GetDirector(ctx context.Context, name string) (*domain.Director, error)
}
