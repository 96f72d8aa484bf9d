package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tessro/jukebox/internal/core"
)

// Result is the outcome of one query on a Stream.
type Result struct {
	Source core.SourceID
	Params core.SearchParams
	Items  []core.AudioItem
	Err    error
}

// Stream debounces the queries of one input (a search box) and delivers
// only the result of the latest query. Submitting a new query cancels the
// previous one, whether it is still waiting or already in flight.
type Stream struct {
	engine    *Engine
	debouncer *Debouncer
	ctx       context.Context
	results   chan Result

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewStream creates a stream. Requests are bound to ctx.
func (e *Engine) NewStream(ctx context.Context, delay time.Duration) *Stream {
	return &Stream{
		engine:    e,
		debouncer: NewDebouncer(delay),
		ctx:       ctx,
		results:   make(chan Result, 1),
	}
}

// Results delivers query outcomes. The channel is closed by Close.
func (s *Stream) Results() <-chan Result {
	return s.results
}

// Submit schedules a query against source (the active source when empty).
// An empty query clears the results right away.
func (s *Stream) Submit(source core.SourceID, params core.SearchParams) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if strings.TrimSpace(params.Query) == "" {
		s.debouncer.Stop()
		s.mu.Unlock()
		s.emit(seq, Result{Source: source, Params: params})
		return
	}
	s.debouncer.Trigger(func() { s.run(seq, source, params) })
	s.mu.Unlock()
}

// Close stops pending work and closes the results channel.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.debouncer.Stop()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	close(s.results)
}

func (s *Stream) run(seq uint64, source core.SourceID, params core.SearchParams) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.mu.Unlock()

	items, err := s.engine.SearchIn(ctx, source, params)

	s.mu.Lock()
	if seq == s.seq {
		s.cancel = nil
	}
	s.mu.Unlock()
	cancel()

	s.emit(seq, Result{Source: source, Params: params, Items: items, Err: err})
}

// emit delivers r unless a newer query has been submitted. A result the
// consumer has not read yet is replaced.
func (s *Stream) emit(seq uint64, r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		return
	}
	select {
	case s.results <- r:
	default:
		select {
		case <-s.results:
		default:
		}
		s.results <- r
	}
}
