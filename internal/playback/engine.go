// Package playback polls the remote player, exposes the latest snapshot and
// issues transport commands followed by short settle re-polls.
package playback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/config"
	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/metrics"
)

// Phase is the lifecycle stage of an Engine.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// HistoryRecorder receives tracks as they start playing.
type HistoryRecorder interface {
	Upsert(entry core.HistoryEntry)
}

// Config holds the poll interval and the settle delays used after commands.
type Config struct {
	PollInterval time.Duration
	ToggleSettle time.Duration
	SkipSettle   time.Duration
	SeekSettle   time.Duration
	PlaySettle   time.Duration
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		ToggleSettle: 200 * time.Millisecond,
		SkipSettle:   350 * time.Millisecond,
		SeekSettle:   250 * time.Millisecond,
		PlaySettle:   250 * time.Millisecond,
	}
}

// ConfigFrom converts the [session] config section. Zero values fall back to defaults.
func ConfigFrom(c config.SessionConfig) Config {
	d := DefaultConfig()
	return Config{
		PollInterval: orDefault(c.Poll(), d.PollInterval),
		ToggleSettle: orDefault(c.Toggle(), d.ToggleSettle),
		SkipSettle:   orDefault(c.Skip(), d.SkipSettle),
		SeekSettle:   orDefault(c.Seek(), d.SeekSettle),
		PlaySettle:   orDefault(c.Play(), d.PlaySettle),
	}
}

func orDefault(v, d time.Duration) time.Duration {
	if v <= 0 {
		return d
	}
	return v
}

const subscriberBuffer = 4

// Engine owns the playback snapshot.
type Engine struct {
	gateway core.Gateway
	auth    core.Authenticator
	history HistoryRecorder
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	// History upserts run outside mu but in the order their snapshots were
	// applied: each takes a ticket under mu and waits for its turn.
	recordMu     sync.Mutex
	recordTurn   *sync.Cond
	recordNext   uint64
	recordServed uint64

	mu          sync.Mutex
	state       *core.PlaybackState
	phase       Phase
	loading     bool
	lastTrackID string
	issued      uint64
	applied     uint64
	subs        map[chan *core.PlaybackState]struct{}
	timers      map[*time.Timer]struct{}
	baseCtx     context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	stopped     bool
}

// New creates an engine. history and m may be nil.
func New(gw core.Gateway, auth core.Authenticator, history HistoryRecorder, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		gateway: gw,
		auth:    auth,
		history: history,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		subs:    make(map[chan *core.PlaybackState]struct{}),
		timers:  make(map[*time.Timer]struct{}),
		baseCtx: context.Background(),
	}
	e.recordTurn = sync.NewCond(&e.recordMu)
	return e
}

// Start enters Loading, polls once and keeps polling every PollInterval
// until Stop is called or ctx is done.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.cancel != nil || e.stopped {
		e.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e.baseCtx = loopCtx
	e.cancel = cancel
	e.done = make(chan struct{})
	e.phase = PhaseLoading
	e.loading = true
	done := e.done
	e.mu.Unlock()

	go e.loop(loopCtx, done)
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	e.poll(ctx)

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.poll(ctx)
		}
	}
}

// Stop halts the poll loop and pending settle timers, then closes every
// subscriber channel. It is safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	for t := range e.timers {
		t.Stop()
	}
	clear(e.timers)
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	e.mu.Lock()
	for ch := range e.subs {
		close(ch)
	}
	clear(e.subs)
	e.mu.Unlock()
}

// Refresh performs one poll on demand.
func (e *Engine) Refresh(ctx context.Context) {
	e.poll(ctx)
}

// Snapshot returns the latest applied state, nil when nothing is playing.
func (e *Engine) Snapshot() *core.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsLoading reports whether the first poll after Start is still outstanding.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Phase returns the lifecycle stage.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Subscribe returns a channel that receives every applied snapshot. Slow
// readers lose the oldest pending snapshot. Call the returned func to unsubscribe.
func (e *Engine) Subscribe() (<-chan *core.PlaybackState, func()) {
	ch := make(chan *core.PlaybackState, subscriberBuffer)

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	e.subs[ch] = struct{}{}
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if _, ok := e.subs[ch]; ok {
				delete(e.subs, ch)
				close(ch)
			}
		})
	}
}

// TogglePlayPause pauses when playing and resumes otherwise.
func (e *Engine) TogglePlayPause(ctx context.Context) error {
	if !e.auth.IsAuthenticated() {
		return nil
	}

	var err error
	if s := e.Snapshot(); s != nil && s.IsPlaying {
		err = e.gateway.Pause(ctx)
	} else {
		err = e.gateway.Resume(ctx)
	}
	if err != nil {
		return err
	}
	e.settle(e.cfg.ToggleSettle)
	return nil
}

// Next skips to the next track.
func (e *Engine) Next(ctx context.Context) error {
	if !e.auth.IsAuthenticated() {
		return nil
	}
	if err := e.gateway.SkipNext(ctx); err != nil {
		return err
	}
	e.settle(e.cfg.SkipSettle)
	return nil
}

// Previous skips to the previous track.
func (e *Engine) Previous(ctx context.Context) error {
	if !e.auth.IsAuthenticated() {
		return nil
	}
	if err := e.gateway.SkipPrevious(ctx); err != nil {
		return err
	}
	e.settle(e.cfg.SkipSettle)
	return nil
}

// SeekToMs moves the playhead to target, clamped to the track, and resumes
// playback when resume is set. Local progress is updated before the re-poll.
func (e *Engine) SeekToMs(ctx context.Context, target int, resume bool) error {
	if !e.auth.IsAuthenticated() {
		return nil
	}

	pos := ClampSeek(target, e.Snapshot().DurationMs())
	if err := e.gateway.Seek(ctx, pos); err != nil {
		return err
	}
	if resume {
		if err := e.gateway.Resume(ctx); err != nil {
			return err
		}
	}

	e.mu.Lock()
	if e.state != nil {
		e.issued++
		e.applied = e.issued
		e.state = e.state.WithProgress(pos)
		e.notifyLocked(e.state)
	}
	e.mu.Unlock()

	e.settle(e.cfg.SeekSettle)
	return nil
}

// ClampSeek bounds target to [0, durationMs]. A zero duration means unknown
// and only the lower bound applies.
func ClampSeek(target, durationMs int) int {
	target = max(target, 0)
	if durationMs > 0 {
		target = min(target, durationMs)
	}
	return target
}

// PlayTrack starts uris on the active device. A non-nil entry goes into the
// history right away instead of waiting for the next poll.
func (e *Engine) PlayTrack(ctx context.Context, uris []string, entry *core.HistoryEntry) error {
	if len(uris) == 0 {
		return nil
	}
	if err := e.gateway.Play(ctx, uris); err != nil {
		return err
	}
	if entry != nil && e.history != nil {
		e.history.Upsert(*entry)
	}
	e.settle(e.cfg.PlaySettle)
	return nil
}

func (e *Engine) poll(ctx context.Context) {
	e.mu.Lock()
	e.issued++
	seq := e.issued
	e.mu.Unlock()

	if !e.auth.IsAuthenticated() {
		e.apply(seq, nil, PhaseReady)
		e.metrics.RecordPoll("unauthenticated")
		return
	}

	state, err := e.gateway.GetPlaybackState(ctx)
	if err != nil {
		e.mu.Lock()
		e.loading = false
		e.mu.Unlock()
		if apperrors.IsCancellation(err) {
			return
		}
		e.logger.Warn("playback poll failed", zap.Error(err))
		e.metrics.RecordPoll("error")
		return
	}

	if e.apply(seq, state, PhaseReady) {
		e.metrics.RecordPoll("ok")
	} else {
		e.metrics.RecordPoll("stale")
	}
}

// apply publishes state unless a newer write already landed. It reports
// whether the state was applied.
func (e *Engine) apply(seq uint64, state *core.PlaybackState, phase Phase) bool {
	var changed *core.Track

	e.mu.Lock()
	e.loading = false
	if seq <= e.applied {
		e.mu.Unlock()
		e.logger.Debug("discarding stale poll", zap.Uint64("seq", seq))
		return false
	}
	e.applied = seq
	e.state = state
	e.phase = phase
	if id := state.TrackID(); id != "" && id != e.lastTrackID {
		e.lastTrackID = id
		changed = state.Track
	}
	e.notifyLocked(state)
	record := changed != nil && e.history != nil
	var ticket uint64
	if record {
		ticket = e.recordNext
		e.recordNext++
	}
	e.mu.Unlock()

	if record {
		e.recordMu.Lock()
		for e.recordServed != ticket {
			e.recordTurn.Wait()
		}
		e.logger.Debug("track changed", zap.String("track_id", changed.ID))
		e.history.Upsert(changed.HistoryEntry())
		e.recordServed++
		e.recordTurn.Broadcast()
		e.recordMu.Unlock()
	}
	return true
}

func (e *Engine) notifyLocked(state *core.PlaybackState) {
	for ch := range e.subs {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

func (e *Engine) settle(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}

	ctx := e.baseCtx
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		e.mu.Lock()
		delete(e.timers, t)
		stopped := e.stopped
		e.mu.Unlock()
		if !stopped {
			e.poll(ctx)
		}
	})
	e.timers[t] = struct{}{}
}
