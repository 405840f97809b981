// Package fetch defines the raw HTTP collaborator wrapped by the caching
// client. A single Response type stands in for both network-origin and
// cache-origin results so callers never branch on where a payload came from.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single request, matching the provider's own
// server-side limit.
const DefaultTimeout = 30 * time.Second

// Response is the unified result of a GET, whether served live or from
// cache. Cache-origin responses carry status 200, the stored payload, no
// headers, and FromCache set.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	OK         bool
	FromCache  bool
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Fetcher is the raw fetch contract: one GET, no caching, no policy.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string, params map[string]string) (*Response, error)
}

// HTTPFetcher performs GETs over net/http, retrying transport-level
// failures with exponential backoff. HTTP error statuses are returned as
// responses, never retried here; retry policy for whole jobs lives with
// the workflow's status tracker.
type HTTPFetcher struct {
	client *http.Client
	retry  RetryConfig
	logger zerolog.Logger
}

// NewHTTPFetcher creates a fetcher with the default timeout and retry
// configuration.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: DefaultTimeout},
		retry:  DefaultRetryConfig(),
		logger: log.With().Str("component", "http-fetcher").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (f *HTTPFetcher) SetHTTPClient(client *http.Client) {
	f.client = client
}

// Get performs a GET against rawURL with the given headers and query
// parameters.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, headers map[string]string, params map[string]string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, value := range params {
			q.Set(key, value)
		}
		u.RawQuery = q.Encode()
	}

	var resp *Response
	err = retryWithBackoff(ctx, f.retry, f.logger, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return permanent(err)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		req.Header.Set("Accept", "application/json")

		httpResp, err := f.client.Do(req)
		if err != nil {
			// Transport failure: retriable.
			return err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return err
		}

		resp = &Response{
			StatusCode: httpResp.StatusCode,
			Body:       body,
			Headers:    httpResp.Header.Clone(),
			OK:         httpResp.StatusCode >= 200 && httpResp.StatusCode < 300,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
