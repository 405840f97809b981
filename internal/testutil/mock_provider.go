// Package testutil provides testing utilities for the matchday client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock provider endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is a configurable fake API-Football server. It records
// every request, so cache tests can assert exactly how many live calls
// a scenario produced.
type MockProvider struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	RequestCount      int
	LastRequestHeader http.Header
	LastQuery         map[string]string
}

// NewMockProvider creates a running mock server. Callers must Close it.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		query := make(map[string]string)
		for k, vs := range r.URL.Query() {
			if len(vs) > 0 {
				query[k] = vs[0]
			}
		}
		mock.LastQuery = query
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}
		mock.defaultHandler(w)
	}))

	return mock
}

// URL returns the mock server URL, usable as the client's base URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.LastQuery = nil
}

// SetHandler sets a custom handler for a path.
func (m *MockProvider) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockProvider) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests the server has seen.
func (m *MockProvider) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// defaultHandler answers with an empty provider envelope and healthy
// quota headers.
func (m *MockProvider) defaultHandler(w http.ResponseWriter) {
	setQuotaHeaders(w, 95, 100)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"results": 0, "paging": {"current": 1, "total": 1}, "errors": [], "response": []}`))
}

func setQuotaHeaders(w http.ResponseWriter, remaining, limit int) {
	w.Header().Set("x-ratelimit-requests-remaining", strconv.Itoa(remaining))
	w.Header().Set("x-ratelimit-requests-limit", strconv.Itoa(limit))
}

// NewEnvelopeResponse creates a 200 response wrapping payload as the
// provider's response field, with quota headers attached.
func NewEnvelopeResponse(payload string, remaining int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"results": 1, "paging": {"current": 1, "total": 1}, "errors": [], "response": ` + payload + `}`,
		Headers: map[string]string{
			"x-ratelimit-requests-remaining": strconv.Itoa(remaining),
			"x-ratelimit-requests-limit":     "100",
			"Content-Type":                   "application/json",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "Too many requests"}`,
		Headers: map[string]string{
			"x-ratelimit-requests-remaining": "0",
			"x-ratelimit-requests-limit":     "100",
			"Content-Type":                   "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
