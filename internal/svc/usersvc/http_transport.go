package usersvc

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/infra/logging"
	http_ "github.com/mkrupp/myflix/internal/infra/transport/http"
)

// HTTPTransport exposes the user profile and favorites endpoints.
// Every route sits behind the request guard.
type HTTPTransport struct {
	userSvc UserService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport for userSvc.
func NewHTTPTransport(userSvc UserService) *HTTPTransport {
	return &HTTPTransport{
		userSvc: userSvc,
		log:     logging.GetLogger("svc.usersvc.http_transport"),
	}
}

// Routes registers the user endpoints on r, each wrapped in requireAuth:
// - GET /users
// - GET, PUT, DELETE /users/{username}
// - POST, DELETE /users/{username}/movies/{movieId}.
func (ht *HTTPTransport) Routes(r *mux.Router, requireAuth http_.Middleware) {
	guarded := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }

	r.Handle("/users", guarded(ht.handle("list users", ht.listUsers))).Methods(http.MethodGet)
	r.Handle("/users/{username}", guarded(ht.handle("get user", ht.getUser))).Methods(http.MethodGet)
	r.Handle("/users/{username}", guarded(ht.handle("update user", ht.updateUser))).Methods(http.MethodPut)
	r.Handle("/users/{username}", guarded(ht.handle("delete user", ht.deleteUser))).Methods(http.MethodDelete)
	r.Handle("/users/{username}/movies/{movieId}",
		guarded(ht.handle("add favorite", ht.addFavorite))).Methods(http.MethodPost)
	r.Handle("/users/{username}/movies/{movieId}",
		guarded(ht.handle("remove favorite", ht.removeFavorite))).Methods(http.MethodDelete)
}

// handle adapts a handler returning a status and body. Errors are written to
// the client through the shared status mapping and logged by severity.
func (ht *HTTPTransport) handle(
	action string,
	fn func(w http.ResponseWriter, r *http.Request) (int, any, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

		status, body, err := fn(w, r)
		if err != nil {
			http_.WriteError(w, err)

			if code, _ := http_.ErrorStatus(err); code >= http.StatusInternalServerError {
				log.ErrorContext(ctx, action+" failed", "error", err)
			} else {
				log.WarnContext(ctx, action+" failed", "error", err)
			}

			return
		}

		if err := http_.WriteJSON(w, status, body); err != nil {
			log.WarnContext(ctx, "write response failed", "error", err)

			return
		}

		log.DebugContext(ctx, action+" done")
	}
}

func (ht *HTTPTransport) listUsers(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	users, err := ht.userSvc.ListUsers(r.Context())

	return http.StatusOK, users, err //nolint:wrapcheck
}

func (ht *HTTPTransport) getUser(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	u, err := ht.userSvc.GetUser(r.Context(), mux.Vars(r)["username"])

	return http.StatusOK, u, err //nolint:wrapcheck
}

func (ht *HTTPTransport) updateUser(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var patch domain.ProfilePatch
	if err := http_.DecodeJSON(w, r, &patch); err != nil {
		return 0, nil, fmt.Errorf("decode patch: %w", err)
	}

	updated, err := ht.userSvc.UpdateUser(r.Context(), mux.Vars(r)["username"], patch)

	return http.StatusOK, updated, err //nolint:wrapcheck
}

func (ht *HTTPTransport) deleteUser(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	username := mux.Vars(r)["username"]

	if err := ht.userSvc.DeleteUser(r.Context(), username); err != nil {
		return 0, nil, err //nolint:wrapcheck
	}

	return http.StatusOK, domain.MessageResponse{Message: username + " was deleted."}, nil
}

func (ht *HTTPTransport) addFavorite(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	vars := mux.Vars(r)
	updated, err := ht.userSvc.AddFavorite(r.Context(), vars["username"], vars["movieId"])

	return http.StatusOK, updated, err //nolint:wrapcheck
}

func (ht *HTTPTransport) removeFavorite(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	vars := mux.Vars(r)
	updated, err := ht.userSvc.RemoveFavorite(r.Context(), vars["username"], vars["movieId"])

	return http.StatusOK, updated, err //nolint:wrapcheck
}
