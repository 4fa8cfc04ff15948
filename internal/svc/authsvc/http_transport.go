package authsvc

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mkrupp/myflix/internal/domain"
	context_ "github.com/mkrupp/myflix/internal/infra/context"
	"github.com/mkrupp/myflix/internal/infra/logging"
	http_ "github.com/mkrupp/myflix/internal/infra/transport/http"
)

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for user registration, login, and token validation.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
	router  *mux.Router
}

// NewHTTPTransport creates a new HTTPTransport instance.
// It requires an AuthService for handling authentication operations.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		router:  mux.NewRouter(),
	}

	ht.Routes(ht.router, http_.RequireAuth(authSvc, ht.log))

	return ht
}

// Routes registers the auth endpoints on r:
// - POST /users: Register a new user
// - POST /login: Login and get an auth token
// - GET /auth/validate: Return the identity behind the presented token.
func (ht *HTTPTransport) Routes(r *mux.Router, requireAuth http_.Middleware) {
	r.HandleFunc("/users", ht.HandleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", ht.HandleLogin).Methods(http.MethodPost)
	r.Handle("/auth/validate", requireAuth(http.HandlerFunc(ht.HandleValidate))).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.router.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleRegister processes user registration requests.
// Expects a JSON or form body with username, password, email and optional birthDate.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			http_.WriteError(w, err)
			log.WarnContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var reg domain.Registration
	if err := decodeCredentials(w, r, &reg, func(form func(string) string) {
		reg = domain.Registration{
			Username:  form("username"),
			Password:  form("password"),
			Email:     form("email"),
			BirthDate: form("birthDate"),
		}
	}); err != nil {
		return err
	}

	log = log.With(logging.Group("user", "username", reg.Username))

	created, err := ht.authSvc.RegisterUser(r.Context(), reg)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	//nolint:errcheck
	http_.WriteJSON(w, http.StatusCreated, created)

	return nil
}

// HandleLogin processes user login requests.
// Expects a JSON or form body with username and password.
// Returns an auth token on successful login.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			http_.WriteError(w, err)
			log.WarnContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req domain.LoginRequest
	if err := decodeCredentials(w, r, &req, func(form func(string) string) {
		req = domain.LoginRequest{Username: form("username"), Password: form("password")}
	}); err != nil {
		return err
	}

	if req.Username == "" || req.Password == "" {
		return domain.ErrInvalidCredentials
	}

	log = log.With(logging.Group("user", "username", req.Username))

	token, err := ht.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return fmt.Errorf("login user: %w", err)
	}

	//nolint:errcheck
	http_.WriteJSON(w, http.StatusOK, domain.AuthTokenResponse{Token: token})

	return nil
}

// HandleValidate returns the identity the request guard attached to the request.
// Used by remote services through authclient.
func (ht *HTTPTransport) HandleValidate(w http.ResponseWriter, r *http.Request) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	identity, ok := context_.IdentityFromContext(r.Context())
	if !ok {
		http_.WriteError(w, domain.ErrNoAuthToken)

		return
	}

	log.DebugContext(r.Context(), "user token validated", logging.Group("token",
		"username", identity.Username,
		"exp", identity.ExpiresAt.UTC().Format(time.RFC3339),
		"iat", identity.IssuedAt.UTC().Format(time.RFC3339),
	))

	//nolint:errcheck
	http_.WriteJSON(w, http.StatusOK, identity)
}

// decodeCredentials reads a JSON body into v, or hands form values to fromForm
// when the request is form-encoded.
func decodeCredentials(
	w http.ResponseWriter,
	r *http.Request,
	v any,
	fromForm func(form func(string) string),
) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		http_.LimitBody(w, r)

		if err := r.ParseForm(); err != nil {
			var verr domain.ValidationError
			verr.Add("body", "must be a valid form")

			return fmt.Errorf("parse form: %w", errors.Join(&verr, err))
		}

		fromForm(r.PostFormValue)

		return nil
	}

	//nolint:wrapcheck
	return http_.DecodeJSON(w, r, v)
}
