// Package tail turns the stream of playback snapshots into discrete events
// (track changes, skips, pauses) and formats them for a terminal.
package tail

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tessro/jukebox/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventStop
	EventVolumeChange
	EventDeviceChange
)

// completionThreshold is the share of a track that must have played for a
// change to count as a natural finish rather than a skip.
const completionThreshold = 0.95

func (t EventType) String() string { return kindOf(t).name }

// MarshalJSON encodes the type by name.
func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Event represents a playback state change.
type Event struct {
	Type      EventType           `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Previous  *core.PlaybackState `json:"previous,omitempty"`
	Current   *core.PlaybackState `json:"current,omitempty"`
}

// Snapshots is the playback engine's subscription API.
type Snapshots interface {
	Subscribe() (<-chan *core.PlaybackState, func())
}

// Watcher diffs consecutive snapshots and emits events.
type Watcher struct {
	snapshots   <-chan *core.PlaybackState
	unsubscribe func()
	now         func() time.Time
	events      chan Event
}

// NewWatcher subscribes to source right away so no snapshot published
// before Run is missed. Run must be called to release the subscription.
func NewWatcher(source Snapshots) *Watcher {
	snapshots, unsubscribe := source.Subscribe()
	return &Watcher{
		snapshots:   snapshots,
		unsubscribe: unsubscribe,
		now:         time.Now,
		events:      make(chan Event, 16),
	}
}

// Events returns the channel of playback events. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run consumes snapshots until ctx is done or the source closes the
// subscription.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.unsubscribe()

	var prev *core.PlaybackState
	first := true

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case curr, ok := <-w.snapshots:
			if !ok {
				return nil
			}
			var events []Event
			if first {
				events = initialEvents(curr, w.now())
				first = false
			} else {
				events = diffStates(prev, curr, w.now())
			}
			for _, e := range events {
				select {
				case w.events <- e:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			prev = curr
		}
	}
}

func initialEvents(curr *core.PlaybackState, now time.Time) []Event {
	if !curr.HasTrack() {
		return nil
	}
	return []Event{{Type: EventTrackChange, Timestamp: now, Current: curr}}
}

// diffStates compares two snapshots and returns detected events. A nil
// snapshot means nothing is playing.
func diffStates(prev, curr *core.PlaybackState, now time.Time) []Event {
	event := func(t EventType) Event {
		return Event{Type: t, Timestamp: now, Previous: prev, Current: curr}
	}

	switch {
	case prev == nil && curr == nil:
		return nil
	case prev == nil:
		return initialEvents(curr, now)
	case curr == nil:
		if prev.HasTrack() {
			return []Event{event(EventStop)}
		}
		return nil
	}

	var events []Event

	if trackChanged(prev, curr) {
		switch {
		case !prev.HasTrack():
			events = append(events, event(EventTrackChange))
		case wasCompleted(prev):
			events = append(events, event(EventTrackComplete))
		default:
			events = append(events, event(EventTrackSkip))
		}
		if prev.HasTrack() && curr.HasTrack() {
			events = append(events, Event{Type: EventTrackChange, Timestamp: now, Current: curr})
		}
	}

	if prev.IsPlaying && !curr.IsPlaying {
		events = append(events, event(EventPause))
	} else if !prev.IsPlaying && curr.IsPlaying {
		events = append(events, event(EventResume))
	}

	if prev.Volume != curr.Volume {
		events = append(events, event(EventVolumeChange))
	}

	if deviceChanged(prev, curr) {
		events = append(events, event(EventDeviceChange))
	}

	return events
}

func trackChanged(prev, curr *core.PlaybackState) bool {
	return prev.TrackID() != curr.TrackID()
}

// wasCompleted reports whether the track reached the completion threshold.
// Unknown durations count as skips.
func wasCompleted(state *core.PlaybackState) bool {
	return state.DurationMs() > 0 && state.ProgressPercent() >= completionThreshold*100
}

func deviceChanged(prev, curr *core.PlaybackState) bool {
	if prev.Device == nil && curr.Device == nil {
		return false
	}
	if prev.Device == nil || curr.Device == nil {
		return true
	}
	return prev.Device.ID != curr.Device.ID
}
