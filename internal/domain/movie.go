package domain

import "errors"

var (
	// ErrMovieNotFound is returned when a movie, genre or director lookup has no match.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrMovieAlreadyExists is returned when adding a movie whose title is taken.
	ErrMovieAlreadyExists = errors.New("movie already exists")
)

// Genre describes a movie genre.
type Genre struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Director describes a movie director.
type Director struct {
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Birth string `json:"birth,omitempty"`
	Death string `json:"death,omitempty"`
}

// Movie is a catalog entry.
type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       Genre    `json:"genre"`
	Director    Director `json:"director"`
	ImagePath   string   `json:"imagePath,omitempty"`
	Featured    bool     `json:"featured"`
}
