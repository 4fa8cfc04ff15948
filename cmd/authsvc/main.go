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
	"github.com/mkrupp/myflix/internal/infra/transport/http"
	"github.com/mkrupp/myflix/internal/repo/store"
	"github.com/mkrupp/myflix/internal/repo/user"
	"github.com/mkrupp/myflix/internal/svc/authsvc"
)

const (
	appName = "myflix"
	svcName = "authsvc"
)

// Config of the standalone auth service. It serves registration, login and
// token validation only; flixsvc delegates to it when AUTH_REMOTE_URL is set.
type Config struct {
	config.EnvConfig

	Log  logging.LoggerConfig     `envPrefix:"LOG_"`
	Auth authsvc.AuthConfig       `envPrefix:"AUTH_"`
	DB   store.Config             `envPrefix:"DB_"`
	HTTP http.HTTPTransportConfig `envPrefix:"HTTP_"`
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
	defer func() {
		log := logging.GetLogger("cmd.authsvc")

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

	authSvc, err := authsvc.NewAuthService(user.SQLUserRepositoryFactory(db), cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	httpTransport := authsvc.NewHTTPTransport(authSvc)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
