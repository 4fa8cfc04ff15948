package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/myflix/internal/infra/config"
	"github.com/mkrupp/myflix/internal/infra/logging"
	http_ "github.com/mkrupp/myflix/internal/infra/transport/http"
	"github.com/mkrupp/myflix/internal/repo/movie"
	"github.com/mkrupp/myflix/internal/repo/store"
	"github.com/mkrupp/myflix/internal/repo/user"
	"github.com/mkrupp/myflix/internal/svc/authsvc"
	"github.com/mkrupp/myflix/internal/svc/authsvc/authclient"
	"github.com/mkrupp/myflix/internal/svc/moviesvc"
	"github.com/mkrupp/myflix/internal/svc/usersvc"
)

const (
	appName = "myflix"
	svcName = "flixsvc"
)

type Config struct {
	config.EnvConfig

	Log        logging.LoggerConfig        `envPrefix:"LOG_"`
	Auth       authsvc.AuthConfig          `envPrefix:"AUTH_"`
	AuthClient authclient.HTTPClientConfig `envPrefix:"AUTH_"`
	DB         store.Config                `envPrefix:"DB_"`
	HTTP       http_.HTTPTransportConfig   `envPrefix:"HTTP_"`
	Movies     moviesvc.MovieConfig        `envPrefix:"MOVIES_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintf(os.Stderr, "parse config: %v\n", err)
		os.Exit(1)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.flixsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "fatal", "error", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	db, err := store.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	movieRepo := movie.NewSQLMovieRepository(db)
	movieSvc := moviesvc.NewRepoMovieService(movieRepo, cfg.Movies)

	if _, err := movieSvc.Seed(ctx); err != nil {
		return fmt.Errorf("seed movies: %w", err)
	}

	// With a remote auth service, registration and login are served there and
	// this process only guards its routes.
	var (
		authSvc *authsvc.AuthService
		guard   http_.Authenticator
		hasher  authsvc.PasswordHasher
	)

	if cfg.AuthClient.RemoteURL != "" {
		log.InfoContext(ctx, "validating tokens remotely", "url", cfg.AuthClient.RemoteURL)
		guard = authclient.NewHTTPClient(cfg.AuthClient, nil)
		hasher = authsvc.NewBcryptHasher(cfg.Auth.BcryptCost)
	} else {
		authSvc, err = authsvc.NewAuthService(user.SQLUserRepositoryFactory(db), cfg.Auth)
		if err != nil {
			return fmt.Errorf("new auth service: %w", err)
		}

		guard = authSvc
		hasher = authSvc.Hasher
	}

	userSvc, err := usersvc.NewRepoUserService(user.SQLUserRepositoryFactory(db), movieRepo, hasher)
	if err != nil {
		return fmt.Errorf("new user service: %w", err)
	}

	router := newRouter(authSvc, userSvc, movieSvc, guard)

	if err := http_.ListenAndServe(ctx, router, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
