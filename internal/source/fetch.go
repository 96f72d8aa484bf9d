package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/config"
	apperrors "github.com/tessro/jukebox/internal/errors"
)

const (
	defaultAttempts  = 3
	defaultRetryBase = time.Second
)

// Fetcher performs JSON GETs against a catalog API. Transport failures are
// retried with exponential backoff; HTTP error statuses are not.
type Fetcher struct {
	service    string
	httpClient *http.Client
	attempts   int
	retryBase  time.Duration
	logger     *zap.Logger
}

// NewFetcher creates a fetcher for the named service.
func NewFetcher(service string, httpClient *http.Client, cfg config.SearchConfig, logger *zap.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	base := cfg.RetryBase()
	if base <= 0 {
		base = defaultRetryBase
	}
	return &Fetcher{
		service:    service,
		httpClient: httpClient,
		attempts:   attempts,
		retryBase:  base,
		logger:     logger,
	}
}

// GetJSON fetches url and decodes the body into out. A non-2xx response is
// returned as a *errors.RemoteAPIError.
func (f *Fetcher) GetJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		if attempt > 0 {
			wait := f.retryBase * time.Duration(1<<(attempt-1))
			f.logger.Debug("Retrying request",
				zap.String("service", f.service),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		err = f.decode(resp, out)
		_ = resp.Body.Close()
		return err
	}

	return apperrors.Transient(fmt.Errorf("%s request failed after %d attempts: %w", f.service, f.attempts, lastErr))
}

func (f *Fetcher) decode(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("Request failed",
			zap.String("service", f.service),
			zap.Int("status", resp.StatusCode),
			zap.String("url", resp.Request.URL.Redacted()))
		return &apperrors.RemoteAPIError{Service: f.service, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", f.service, err)
	}
	return nil
}
