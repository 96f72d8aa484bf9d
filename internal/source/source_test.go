package source

import (
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/tessro/jukebox/internal/config"
)

// flakyTransport fails the first n round trips with a transport error.
type flakyTransport struct {
	fails int32
	calls atomic.Int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.fails {
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{MaxRetries: 3, RetryDelay: 1}
}

func newTestFetcher(t *testing.T, service string, client *http.Client) *Fetcher {
	t.Helper()
	return NewFetcher(service, client, testSearchConfig(), zaptest.NewLogger(t))
}
