package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrBackendUnavailable wraps transport failures: refused connections,
	// timeouts, cancelled contexts.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrMalformedResponse wraps replies whose body is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed backend response")
)

const maxResponseBody = 1 << 20

// APIClient handles all communication with the authentication backend.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client

	observe func(endpoint string, d time.Duration)
}

type Option func(*APIClient)

// WithObserver reports the duration of every backend call.
func WithObserver(fn func(endpoint string, d time.Duration)) Option {
	return func(c *APIClient) { c.observe = fn }
}

// New creates a client for the backend at baseURL. A zero timeout means none.
func New(baseURL string, timeout time.Duration, opts ...Option) *APIClient {
	c := &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// postJSON sends body to path and returns the response with its body fully
// read. Non-2xx statuses are not errors here; callers decide what they mean.
func (c *APIClient) postJSON(ctx context.Context, endpoint, path string, body any, cookies ...*http.Cookie) (*http.Response, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	start := time.Now()
	resp, err := c.HttpClient.Do(req)
	if c.observe != nil {
		c.observe(endpoint, time.Since(start))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: reading body: %v", ErrBackendUnavailable, endpoint, err)
	}
	return resp, data, nil
}

// decode unmarshals data into out. An empty body is accepted only when
// allowEmpty is set, leaving out at its zero value.
func decode(endpoint string, status int, data []byte, out any, allowEmpty bool) error {
	if len(bytes.TrimSpace(data)) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: %s: empty body (status %d)", ErrMalformedResponse, endpoint, status)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s (status %d): %v", ErrMalformedResponse, endpoint, status, err)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
