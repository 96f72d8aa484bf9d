package auth

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"time"
)

// CallbackResult contains the result of the OAuth callback.
type CallbackResult struct {
	Code  string
	State string
	Error string
}

// CallbackServer receives the OAuth redirect from Spotify.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	path     string
	result   chan CallbackResult
}

// NewCallbackServer listens on the host and port of redirectURI and serves
// its path. Port 0 picks a free port.
func NewCallbackServer(redirectURI string) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	listener, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", u.Host, err)
	}

	cs := &CallbackServer{
		listener: listener,
		path:     path,
		result:   make(chan CallbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, cs.handleCallback)

	cs.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return cs, nil
}

// Start begins serving HTTP requests in the background.
func (cs *CallbackServer) Start() {
	go func() {
		_ = cs.server.Serve(cs.listener)
	}()
}

// Wait blocks until a callback is received or ctx is done.
func (cs *CallbackServer) Wait(ctx context.Context) (CallbackResult, error) {
	select {
	case result := <-cs.result:
		return result, nil
	case <-ctx.Done():
		return CallbackResult{}, ctx.Err()
	}
}

// Shutdown gracefully shuts down the server.
func (cs *CallbackServer) Shutdown(ctx context.Context) error {
	return cs.server.Shutdown(ctx)
}

// URL returns the callback URL the server actually answers on.
func (cs *CallbackServer) URL() string {
	return "http://" + cs.listener.Addr().String() + cs.path
}

func (cs *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result := CallbackResult{
		Code:  query.Get("code"),
		State: query.Get("state"),
		Error: query.Get("error"),
	}

	// Duplicate callbacks are dropped.
	select {
	case cs.result <- result:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if result.Error != "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, pageTemplate, "Authentication Failed",
			"Error: "+html.EscapeString(result.Error)+". You can close this window.")
		return
	}
	fmt.Fprintf(w, pageTemplate, "Authentication Successful",
		"You can close this window and return to the terminal.")
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head><title>jukebox</title></head>
<body>
<h1>%s</h1>
<p>%s</p>
</body>
</html>`
