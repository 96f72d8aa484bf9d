package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tessro/jukebox/internal/config"
)

func TestToken_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"expired", time.Now().Add(-1 * time.Hour), true},
		{"expires soon (within buffer)", time.Now().Add(30 * time.Second), true},
		{"valid", time.Now().Add(1 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &Token{ExpiresAt: tt.expiresAt}
			if got := token.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

type tokenForm struct {
	GrantType    string
	Code         string
	ClientID     string
	Verifier     string
	RefreshToken string
}

// newTokenServer serves the token endpoint. It records the last form and
// answers with body.
func newTokenServer(t *testing.T, status int, body map[string]any) (*httptest.Server, <-chan tokenForm) {
	t.Helper()
	forms := make(chan tokenForm, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("Failed to parse form: %v", err)
		}
		forms <- tokenForm{
			GrantType:    r.FormValue("grant_type"),
			Code:         r.FormValue("code"),
			ClientID:     r.FormValue("client_id"),
			Verifier:     r.FormValue("code_verifier"),
			RefreshToken: r.FormValue("refresh_token"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, forms
}

func testConfig(tokenURL string) *Config {
	cfg := NewConfig(config.SpotifyConfig{ClientID: "test_client"})
	cfg.TokenURL = tokenURL
	return cfg
}

func TestExchangeCode(t *testing.T) {
	srv, forms := newTokenServer(t, http.StatusOK, map[string]any{
		"access_token":  "access_token_123",
		"token_type":    "Bearer",
		"scope":         "user-read-private",
		"expires_in":    3600,
		"refresh_token": "refresh_token_456",
	})

	tok, err := ExchangeCode(context.Background(), testConfig(srv.URL), "test_code", "test_verifier")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	form := <-forms
	if form.GrantType != "authorization_code" || form.Code != "test_code" ||
		form.ClientID != "test_client" || form.Verifier != "test_verifier" {
		t.Errorf("form = %+v", form)
	}

	if tok.AccessToken != "access_token_123" || tok.RefreshToken != "refresh_token_456" {
		t.Errorf("token = %+v", tok)
	}
	if tok.Scope != "user-read-private" {
		t.Errorf("Scope = %q", tok.Scope)
	}
	if tok.IsExpired() {
		t.Error("fresh token should not be expired")
	}
}

func TestExchangeCodeError(t *testing.T) {
	srv, _ := newTokenServer(t, http.StatusBadRequest, map[string]any{
		"error":             "invalid_grant",
		"error_description": "Authorization code expired",
	})

	_, err := ExchangeCode(context.Background(), testConfig(srv.URL), "old", "v")
	if err == nil || !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("ExchangeCode() error = %v, want invalid_grant", err)
	}
}

func TestRefreshAccessTokenKeepsRefreshToken(t *testing.T) {
	srv, forms := newTokenServer(t, http.StatusOK, map[string]any{
		"access_token": "new_access_token",
		"token_type":   "Bearer",
		"expires_in":   3600,
	})

	tok, err := RefreshAccessToken(context.Background(), testConfig(srv.URL), "old_refresh")
	if err != nil {
		t.Fatalf("RefreshAccessToken() error = %v", err)
	}
	if form := <-forms; form.GrantType != "refresh_token" || form.RefreshToken != "old_refresh" {
		t.Errorf("form = %+v", form)
	}
	if tok.AccessToken != "new_access_token" || tok.RefreshToken != "old_refresh" {
		t.Errorf("token = %+v", tok)
	}
}

func TestRequestTokenContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExchangeCode(ctx, testConfig("http://127.0.0.1:1/token"), "code", "verifier")
	if err == nil {
		t.Error("Expected error for cancelled context")
	}
}
