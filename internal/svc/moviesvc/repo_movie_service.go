package moviesvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/infra/logging"
	"github.com/mkrupp/myflix/internal/repo/movie"
)

// RepoMovieService implements MovieService on top of a movie repository.
type RepoMovieService struct {
	movies movie.Repository
	cfg    MovieConfig
	log    logging.Logger
}

var _ MovieService = (*RepoMovieService)(nil)

// NewRepoMovieService creates a RepoMovieService.
func NewRepoMovieService(movies movie.Repository, cfg MovieConfig) *RepoMovieService {
	return &RepoMovieService{
		movies: movies,
		cfg:    cfg,
		log:    logging.GetLogger("svc.moviesvc.repo_movie_service"),
	}
}

// ListMovies implements MovieService.ListMovies.
func (s *RepoMovieService) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.movies.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	return movies, nil
}

// GetMovie implements MovieService.GetMovie.
func (s *RepoMovieService) GetMovie(ctx context.Context, title string) (*domain.Movie, error) {
	m, ok, err := s.movies.GetMovieByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	} else if !ok {
		return nil, domain.ErrMovieNotFound
	}

	return m, nil
}

// GetGenre implements MovieService.GetGenre.
func (s *RepoMovieService) GetGenre(ctx context.Context, name string) (*domain.Genre, error) {
	g, ok, err := s.movies.GetGenreByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	} else if !ok {
		return nil, domain.ErrMovieNotFound
	}

	return g, nil
}

// GetDirector implements MovieService.GetDirector.
func (s *RepoMovieService) GetDirector(ctx context.Context, name string) (*domain.Director, error) {
	d, ok, err := s.movies.GetDirectorByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get director: %w", err)
	} else if !ok {
		return nil, domain.ErrMovieNotFound
	}

	return d, nil
}

// Seed loads the configured seed file into the catalog. It is a no-op without
// a seed file and skips titles that already exist, so it is safe on every start.
// Returns the number of movies inserted.
func (s *RepoMovieService) Seed(ctx context.Context) (inserted int, err error) {
	if s.cfg.SeedFile == "" {
		return 0, nil
	}

	log := s.log.With(logging.Group("seed", "file", s.cfg.SeedFile))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "seed catalog failed", "error", err)
		} else {
			log.InfoContext(ctx, "catalog seeded", "inserted", inserted)
		}
	}()

	raw, err := os.ReadFile(s.cfg.SeedFile)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var movies []domain.Movie
	if err := json.Unmarshal(raw, &movies); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	for _, m := range movies {
		if _, err := s.movies.CreateMovie(ctx, m); err != nil {
			if errors.Is(err, domain.ErrMovieAlreadyExists) {
				continue
			}

			return inserted, fmt.Errorf("create movie %q: %w", m.Title, err)
		}

		inserted++
	}

	return inserted, nil
}
