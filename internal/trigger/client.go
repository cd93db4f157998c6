package trigger

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/mailbridge/cadence/internal/errors"
	"github.com/mailbridge/cadence/internal/httpclient"
)

// Config describes a single trigger call. Callers rebuild it from the process
// environment on every tick so rotated secrets take effect without a restart.
type Config struct {
	BaseURL   string
	AuthToken string
	Path      string
}

// URL joins the base URL and path.
func (c Config) URL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + c.Path
}

// Client issues bearer-authenticated GET requests against the app's internal
// trigger endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a trigger client backed by the instrumented HTTP client.
func NewClient() *Client {
	return &Client{httpClient: httpclient.InstrumentedClient}
}

// NewClientWithHTTP creates a trigger client with a caller-supplied HTTP
// client. Used by tests.
func NewClientWithHTTP(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Invoke performs a single GET against the configured endpoint and returns
// the decoded JSON payload. It never retries; interpretation of the payload
// is left to the caller.
//
// A missing auth token fails fast without a network call so that callers can
// tell a configuration gap apart from a broken endpoint.
func (c *Client) Invoke(ctx context.Context, cfg Config) (map[string]any, error) {
	if cfg.AuthToken == "" {
		return nil, apperrors.NewConfigMissingError("auth token not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL(), nil)
	if err != nil {
		return nil, apperrors.NewInternalError("building trigger request", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.AuthToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError("trigger request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewRemoteError("trigger rejected", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewInternalError("decoding trigger response", err)
	}

	return payload, nil
}
