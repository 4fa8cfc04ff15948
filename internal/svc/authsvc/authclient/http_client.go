package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mkrupp/myflix/internal/domain"
	context_ "github.com/mkrupp/myflix/internal/infra/context"
	"github.com/mkrupp/myflix/internal/infra/logging"
	http_ "github.com/mkrupp/myflix/internal/infra/transport/http"
)

const (
	TraceIDHeader = "X-Request-ID"
	ValidatePath  = "/auth/validate"
)

// ErrUnexpectedResponse is returned when the auth service answers with a status it should not.
var ErrUnexpectedResponse = errors.New("unexpected auth service response")

// HTTPClientConfig holds configuration for the HTTP auth client.
type HTTPClientConfig struct {
	// RemoteURL is the base URL of the auth service. Empty means validate locally.
	RemoteURL string `env:"REMOTE_URL" envDefault:""`
	// Timeout bounds each validation round trip when no client is supplied.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// HTTPClient implements AuthClient using HTTP requests to validate tokens.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var (
	_ AuthClient          = (*HTTPClient)(nil)
	_ http_.Authenticator = (*HTTPClient)(nil)
)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, a client bounded by cfg.Timeout is used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.authsvc.http_client"),
		cfg:        cfg,
	}
}

// Authenticate implements AuthClient.Authenticate by calling GET /auth/validate on the
// configured auth service. The token is sent in the Authorization header.
func (ht *HTTPClient) Authenticate(ctx context.Context, token string) (_ domain.Identity, err error) {
	defer func() {
		if err != nil {
			ht.log.DebugContext(ctx, "remote authenticate failed", "error", err)
		}
	}()

	endpoint := strings.TrimRight(ht.cfg.RemoteURL, "/") + ValidatePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set(http_.AuthorizationHeader, "Bearer "+token)

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(TraceIDHeader, traceID)
	}

	resp, err := ht.httpClient.Do(req)
	if err != nil {
		return domain.Identity{}, errors.Join(domain.ErrStoreUnavailable, fmt.Errorf("get: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var identity domain.Identity
		if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
			return domain.Identity{}, fmt.Errorf("decode identity: %w", err)
		}

		return identity, nil
	case resp.StatusCode == http.StatusUnauthorized:
		var body http_.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)

		return domain.Identity{}, refusal(body.Error)
	case resp.StatusCode >= http.StatusInternalServerError:
		return domain.Identity{}, fmt.Errorf("%w: status %d", domain.ErrStoreUnavailable, resp.StatusCode)
	default:
		return domain.Identity{}, fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
}

// refusal maps the remote error code of a 401 back to its sentinel.
func refusal(code string) error {
	switch code {
	case "token_expired":
		return domain.ErrAuthTokenExpired
	case "authentication_failed":
		return domain.ErrInvalidCredentials
	default:
		return domain.ErrInvalidAuthToken
	}
}
