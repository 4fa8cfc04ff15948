package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/myflix/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	//nolint:wrapcheck
	return json.NewEncoder(w).Encode(v)
}

// ErrorStatus maps err to a status code and a body that is safe to show to clients.
// Internal failures get a generic message; their details stay in the server log.
func ErrorStatus(err error) (int, ErrorResponse) {
	var (
		validationErr *domain.ValidationError
		tooLarge      *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "request_too_large",
			Message: http.StatusText(http.StatusRequestEntityTooLarge),
		}
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_failed",
			Message: "request validation failed",
			Errors:  validationErr.Fields,
		}
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusBadRequest, ErrorResponse{Error: "duplicate_username", Message: "username is already registered"}
	case errors.Is(err, domain.ErrAuthTokenExpired):
		return http.StatusUnauthorized, ErrorResponse{Error: "token_expired", Message: "auth token expired"}
	case errors.Is(err, domain.ErrInvalidAuthToken):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid_token", Message: "invalid auth token"}
	case errors.Is(err, domain.ErrNoAuthToken):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid_token", Message: "no auth token"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Error: "authentication_failed", Message: "authentication failed"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "not allowed to act on this resource"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "user not found"}
	case errors.Is(err, domain.ErrMovieNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "movie not found"}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: http.StatusText(http.StatusServiceUnavailable),
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "internal",
			Message: http.StatusText(http.StatusInternalServerError),
		}
	}
}

// WriteError writes the client-safe rendition of err.
func WriteError(w http.ResponseWriter, err error) {
	status, body := ErrorStatus(err)
	_ = WriteJSON(w, status, body)
}

// MaxBodyBytes caps the size of request bodies read by DecodeJSON and LimitBody.
const MaxBodyBytes = 1 << 20

// LimitBody caps r.Body at MaxBodyBytes. Reads past the cap fail with *http.MaxBytesError.
func LimitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
}

// DecodeJSON decodes at most MaxBodyBytes of the request body into v. Malformed
// bodies are reported as a validation failure on the "body" field, oversized
// ones as *http.MaxBytesError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	LimitBody(w, r)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("decode body: %w", err)
		}

		var verr domain.ValidationError
		verr.Add("body", "must be a valid JSON object")

		return errors.Join(&verr, err)
	}

	return nil
}
