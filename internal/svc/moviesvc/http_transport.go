package moviesvc

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrupp/myflix/internal/infra/logging"
	http_ "github.com/mkrupp/myflix/internal/infra/transport/http"
)

// HTTPTransport exposes the catalog read endpoints.
type HTTPTransport struct {
	movieSvc MovieService
	log      logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport for movieSvc.
func NewHTTPTransport(movieSvc MovieService) *HTTPTransport {
	return &HTTPTransport{
		movieSvc: movieSvc,
		log:      logging.GetLogger("svc.moviesvc.http_transport"),
	}
}

// Routes registers the catalog endpoints on r, each wrapped in requireAuth:
// - GET /movies
// - GET /movies/{title}
// - GET /genres/{name}
// - GET /directors/{name}.
func (ht *HTTPTransport) Routes(r *mux.Router, requireAuth http_.Middleware) {
	r.Handle("/movies", requireAuth(http.HandlerFunc(ht.HandleListMovies))).Methods(http.MethodGet)
	r.Handle("/movies/{title}", requireAuth(http.HandlerFunc(ht.HandleGetMovie))).Methods(http.MethodGet)
	r.Handle("/genres/{name}", requireAuth(http.HandlerFunc(ht.HandleGetGenre))).Methods(http.MethodGet)
	r.Handle("/directors/{name}", requireAuth(http.HandlerFunc(ht.HandleGetDirector))).Methods(http.MethodGet)
}

func (ht *HTTPTransport) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		ht.log.WarnContext(r.Context(), "catalog request failed",
			logging.Group("http", "method", r.Method, "url", r.URL.String()), "error", err)
		http_.WriteError(w, err)

		return
	}

	//nolint:errcheck
	http_.WriteJSON(w, http.StatusOK, body)
}

// HandleListMovies returns the whole catalog.
func (ht *HTTPTransport) HandleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := ht.movieSvc.ListMovies(r.Context())
	ht.respond(w, r, movies, err)
}

// HandleGetMovie returns one movie by title.
func (ht *HTTPTransport) HandleGetMovie(w http.ResponseWriter, r *http.Request) {
	m, err := ht.movieSvc.GetMovie(r.Context(), mux.Vars(r)["title"])
	ht.respond(w, r, m, err)
}

// HandleGetGenre returns one genre by name.
func (ht *HTTPTransport) HandleGetGenre(w http.ResponseWriter, r *http.Request) {
	g, err := ht.movieSvc.GetGenre(r.Context(), mux.Vars(r)["name"])
	ht.respond(w, r, g, err)
}

// HandleGetDirector returns one director by name.
func (ht *HTTPTransport) HandleGetDirector(w http.ResponseWriter, r *http.Request) {
	d, err := ht.movieSvc.GetDirector(r.Context(), mux.Vars(r)["name"])
	ht.respond(w, r, d, err)
}
