package main

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrupp/myflix/internal/infra/logging"
	http_ "github.com/mkrupp/myflix/internal/infra/transport/http"
	"github.com/mkrupp/myflix/internal/svc/authsvc"
	"github.com/mkrupp/myflix/internal/svc/moviesvc"
	"github.com/mkrupp/myflix/internal/svc/usersvc"
)

const welcome = "Welcome to myFlix!"

// newRouter mounts every service's routes. Routes other than GET /, POST /users
// and POST /login go through the request guard backed by guard. A nil authSvc
// leaves registration and login to a remote auth service.
func newRouter(
	authSvc *authsvc.AuthService,
	userSvc usersvc.UserService,
	movieSvc moviesvc.MovieService,
	guard http_.Authenticator,
) *mux.Router {
	requireAuth := http_.RequireAuth(guard, logging.GetLogger("cmd.flixsvc.guard"))

	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, welcome)
	}).Methods(http.MethodGet)

	if authSvc != nil {
		authsvc.NewHTTPTransport(authSvc).Routes(r, requireAuth)
	}

	usersvc.NewHTTPTransport(userSvc).Routes(r, requireAuth)
	moviesvc.NewHTTPTransport(movieSvc).Routes(r, requireAuth)

	return r
}
