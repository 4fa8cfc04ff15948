package moviesvc

// MovieConfig holds configuration parameters for the movie service.
type MovieConfig struct {
	// SeedFile is a JSON array of movies loaded at startup. Titles already in
	// the catalog are skipped.
	SeedFile string `env:"SEED_FILE" envDefault:""`
}
