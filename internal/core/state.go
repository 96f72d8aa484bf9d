package core

import "time"

// PlaybackState is a point-in-time snapshot of remote playback.
// A snapshot is never mutated once published; use WithProgress to derive a new one.
type PlaybackState struct {
	Track     *Track        `json:"track"`
	Device    *Device       `json:"device"`
	IsPlaying bool          `json:"is_playing"`
	Progress  time.Duration `json:"progress"`
	Volume    int           `json:"volume"`
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// TrackID returns the current track ID, or "" if nothing is loaded.
func (s *PlaybackState) TrackID() string {
	if !s.HasTrack() {
		return ""
	}
	return s.Track.ID
}

// DurationMs returns the track duration in milliseconds, 0 when unknown.
func (s *PlaybackState) DurationMs() int {
	if !s.HasTrack() {
		return 0
	}
	return int(s.Track.Duration / time.Millisecond)
}

// ProgressMs returns the playback position in milliseconds.
func (s *PlaybackState) ProgressMs() int {
	if s == nil {
		return 0
	}
	return int(s.Progress / time.Millisecond)
}

// DeviceName returns the active device name, or "".
func (s *PlaybackState) DeviceName() string {
	if s == nil || s.Device == nil {
		return ""
	}
	return s.Device.Name
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Track == nil || s.Track.Duration == 0 {
		return 0
	}
	return float64(s.Progress) / float64(s.Track.Duration) * 100
}

// WithProgress returns a copy of the snapshot with the position replaced.
func (s *PlaybackState) WithProgress(ms int) *PlaybackState {
	if s == nil {
		return nil
	}
	next := *s
	next.Progress = time.Duration(ms) * time.Millisecond
	return &next
}
