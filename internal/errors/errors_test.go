package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRemoteAPIErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    *RemoteAPIError
		target error
		want   bool
	}{
		{"401 is auth", &RemoteAPIError{Service: "Spotify", Status: 401}, ErrNotAuthenticated, true},
		{"429 is rate limit", &RemoteAPIError{Service: "Spotify", Status: 429}, ErrRateLimited, true},
		{"404 device", &RemoteAPIError{Service: "Spotify", Status: 404, Message: "Player command failed: No active device found"}, ErrNoActiveDevice, true},
		{"404 other", &RemoteAPIError{Service: "Openverse", Status: 404}, ErrNoActiveDevice, false},
		{"403 premium", &RemoteAPIError{Service: "Spotify", Status: 403, Message: "Premium required"}, ErrPremiumRequired, true},
		{"500 not auth", &RemoteAPIError{Service: "Spotify", Status: 500}, ErrNotAuthenticated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("pause: %w", tt.err)
			if got := errors.Is(wrapped, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	err := fmt.Errorf("search: %w", &RemoteAPIError{Service: "Jamendo", Status: 503})
	if got := StatusCode(err); got != 503 {
		t.Errorf("StatusCode = %d, want 503", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", got)
	}
}

func TestTransient(t *testing.T) {
	err := Transient(errors.New("connection reset by peer"))
	if !errors.Is(err, ErrNetworkError) {
		t.Errorf("Transient() should wrap ErrNetworkError, got %v", err)
	}

	if got := Transient(context.Canceled); got != context.Canceled {
		t.Errorf("Transient(context.Canceled) = %v, want context.Canceled", got)
	}

	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"direct", Timeout(context.DeadlineExceeded)},
		{"via transient", Transient(fmt.Errorf("get: %w", context.DeadlineExceeded))},
		{"already wrapped", Timeout(Timeout(context.DeadlineExceeded))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, target := range []error{ErrTimeout, ErrNetworkError, context.DeadlineExceeded} {
				if !errors.Is(tt.err, target) {
					t.Errorf("%v does not match %v", tt.err, target)
				}
			}
			if IsCancellation(tt.err) {
				t.Errorf("%v should not be a cancellation", tt.err)
			}
		})
	}
	if got := GetSuggestion(Timeout(context.DeadlineExceeded)); got != "Check your internet connection and try again" {
		t.Errorf("GetSuggestion(timeout) = %q", got)
	}
}

func TestIsCancellation(t *testing.T) {
	if !IsCancellation(fmt.Errorf("fetch: %w", context.Canceled)) {
		t.Error("wrapped context.Canceled should be a cancellation")
	}
	if IsCancellation(context.DeadlineExceeded) {
		t.Error("deadline exceeded is not a cancellation")
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"auth", ErrNotAuthenticated, "jukebox auth login"},
		{"wrapped auth", fmt.Errorf("toggle: %w", &RemoteAPIError{Service: "Spotify", Status: 401}), "jukebox auth login"},
		{"device", ErrNoActiveDevice, "Open Spotify"},
		{"network", Transient(errors.New("dial tcp")), "internet connection"},
		{"source", ErrSourceDisabled, "jukebox source list"},
		{"server", &RemoteAPIError{Service: "Openverse", Status: 502}, "having issues"},
		{"explicit", WithSuggestion(errors.New("boom"), "do the thing"), "do the thing"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("GetSuggestion() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	got := Format(ErrNotAuthenticated)
	if !strings.HasPrefix(got, "Error: authentication required") {
		t.Errorf("Format() = %q", got)
	}
	if !strings.Contains(got, "Suggestion:") {
		t.Errorf("Format() should include suggestion, got %q", got)
	}
	if Format(nil) != "" {
		t.Error("Format(nil) should be empty")
	}
}

func TestPersistenceError(t *testing.T) {
	inner := errors.New("disk full")
	err := &PersistenceError{Op: "write", Key: "recently_played_v1", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("PersistenceError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "recently_played_v1") {
		t.Errorf("Error() = %q, want key in message", err.Error())
	}
}

