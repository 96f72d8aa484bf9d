// Package client is a small Spotify Web API client covering playback
// control, search and listening history.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/metrics"
)

const (
	// BaseURL is the Spotify Web API base URL.
	BaseURL = "https://api.spotify.com/v1"

	defaultAttempts  = 3
	defaultRetryWait = 500 * time.Millisecond
)

// TokenProvider supplies bearer tokens.
type TokenProvider interface {
	ValidToken(ctx context.Context) (string, error)
}

// Client is a Spotify API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
	logger     *zap.Logger
	metrics    *metrics.Metrics
	attempts   int
	retryWait  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics observes every request.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRetry sets the attempt count and the first backoff step.
func WithRetry(attempts int, wait time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if wait > 0 {
			c.retryWait = wait
		}
	}
}

// New creates a new Spotify client.
func New(tokens TokenProvider, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    BaseURL,
		tokens:     tokens,
		logger:     logger,
		attempts:   defaultAttempts,
		retryWait:  defaultRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request. It reports false when Spotify answered 204.
func (c *Client) Get(ctx context.Context, path string, result any) (bool, error) {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) error {
	_, err := c.request(ctx, http.MethodPost, path, body, nil)
	return err
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) error {
	_, err := c.request(ctx, http.MethodPut, path, body, nil)
	return err
}

// request sends one API call. Transport failures are retried with
// exponential backoff; any HTTP response, including 5xx, is final.
func (c *Client) request(ctx context.Context, method, path string, body, result any) (bool, error) {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return false, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	label := method + " " + endpoint(path)
	c.logger.Debug("Spotify request", zap.String("method", method), zap.String("url", fullURL))

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1))
			c.logger.Debug("Retrying Spotify request",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(wait):
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return false, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.RecordGatewayRequest(label, 0, time.Since(start))
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		c.metrics.RecordGatewayRequest(label, resp.StatusCode, time.Since(start))
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		c.logger.Debug("Spotify response", zap.Int("status", resp.StatusCode))

		if resp.StatusCode == http.StatusNoContent {
			return false, nil
		}
		if resp.StatusCode >= 400 {
			return false, parseError(resp.StatusCode, respBody)
		}
		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return false, fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return true, nil
	}

	return false, apperrors.Transient(fmt.Errorf("request failed after %d attempts: %w", c.attempts, lastErr))
}

// errorBody is Spotify's error envelope.
type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseError(status int, body []byte) error {
	apiErr := &apperrors.RemoteAPIError{Service: "Spotify", Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		apiErr.Message = eb.Error.Message
	}
	return apiErr
}

// endpoint strips the query string so metric labels stay bounded.
func endpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
