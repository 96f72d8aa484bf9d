package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrNoActiveDevice   = errors.New("no active device")
	ErrPremiumRequired  = errors.New("spotify premium required")
	ErrRateLimited      = errors.New("rate limited")
	ErrNetworkError     = errors.New("network error")
	ErrTimeout          = errors.New("request timeout")
	ErrSourceDisabled   = errors.New("audio source is not enabled")
	ErrUnknownSource    = errors.New("unknown audio source")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// RemoteAPIError is a non-2xx response from a remote service.
type RemoteAPIError struct {
	Service string
	Status  int
	Message string
}

func (e *RemoteAPIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error: %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.Status, e.Message)
}

// Is maps well-known statuses onto the sentinel errors.
func (e *RemoteAPIError) Is(target error) bool {
	switch target {
	case ErrNotAuthenticated:
		return e.Status == 401
	case ErrRateLimited:
		return e.Status == 429
	case ErrNoActiveDevice:
		return e.Status == 404 && strings.Contains(strings.ToLower(e.Message), "no active device")
	case ErrPremiumRequired:
		return e.Status == 403 && strings.Contains(strings.ToLower(e.Message), "premium")
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// PersistenceError is a failed read or write against the local store.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Transient wraps a transport failure that survived every retry. Deadline
// errors become Timeout errors.
func Transient(err error) error {
	if err == nil || IsCancellation(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}
	return fmt.Errorf("%w: %w", ErrNetworkError, err)
}

// Timeout wraps a deadline error. It matches both ErrTimeout and
// ErrNetworkError.
func Timeout(err error) error {
	if errors.Is(err, ErrTimeout) {
		return err
	}
	return fmt.Errorf("%w (%w): %w", ErrNetworkError, ErrTimeout, err)
}

// IsCancellation reports whether err comes from a cancelled context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// JukeboxError wraps an error with a user-friendly suggestion.
type JukeboxError struct {
	Err        error
	Suggestion string
}

func (e *JukeboxError) Error() string {
	return e.Err.Error()
}

func (e *JukeboxError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &JukeboxError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var jbErr *JukeboxError
	if errors.As(err, &jbErr) && jbErr.Suggestion != "" {
		return jbErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNotAuthenticated) || strings.Contains(errStr, "invalid access token") ||
		strings.Contains(errStr, "token expired") {
		return "Run 'jukebox auth login' to authenticate with Spotify"
	}

	if errors.Is(err, ErrNoActiveDevice) || strings.Contains(errStr, "no active device") {
		return "Open Spotify on a device and start playing, then try again"
	}

	if errors.Is(err, ErrPremiumRequired) || strings.Contains(errStr, "premium required") ||
		strings.Contains(errStr, "restricted device") {
		return "This feature requires Spotify Premium"
	}

	if errors.Is(err, ErrRateLimited) {
		return "Too many requests. Wait a moment and try again"
	}

	if errors.Is(err, ErrSourceDisabled) || errors.Is(err, ErrUnknownSource) {
		return "Run 'jukebox source list' to see enabled sources"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) {
		return "Run 'jukebox config init' to create a configuration file"
	}

	if StatusCode(err) >= 500 {
		return "The service is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
