package tail

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/jukebox/internal/core"
)

// kind is the presentation of one event type. verb is set for events that
// name a track.
type kind struct {
	name     string
	emoji    string
	verb     string
	fallback string
}

var kinds = map[EventType]kind{
	EventTrackChange:   {"track_change", "🎵", "Now playing", "Track changed"},
	EventTrackComplete: {"track_complete", "✅", "Finished", "Track completed"},
	EventTrackSkip:     {"track_skip", "⏭️", "Skipped", "Track skipped"},
	EventPause:         {"pause", "⏸️", "", "Paused"},
	EventResume:        {"resume", "▶️", "", "Resumed"},
	EventStop:          {"stop", "⏹️", "", "Stopped"},
	EventVolumeChange:  {"volume_change", "🔊", "", "Volume changed"},
	EventDeviceChange:  {"device_change", "📱", "", "Device changed"},
}

var unknownKind = kind{"unknown", "❓", "", "Unknown event"}

func kindOf(t EventType) kind {
	if k, ok := kinds[t]; ok {
		return k
	}
	return unknownKind
}

// Formatter renders events as single lines, or through a user template.
type Formatter struct {
	emoji     bool
	timestamp bool
	tmpl      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) { f.emoji = enabled }
}

func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) { f.timestamp = enabled }
}

// WithTemplate replaces the default line with t (see ParseTemplate).
func WithTemplate(t *template.Template) FormatterOption {
	return func(f *Formatter) { f.tmpl = t }
}

// ParseTemplate parses a --format template. The fields available are
// those of Fields.
func ParseTemplate(text string) (*template.Template, error) {
	t, err := template.New("format").Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid format template: %w", err)
	}
	return t, nil
}

// NewFormatter returns a formatter with emoji on and timestamps off.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{emoji: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fields is what a --format template sees.
type Fields struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Artist    string
	Album     string
	URI       string
	Duration  string
	Progress  string
	Device    string
	Volume    int
}

func fieldsOf(e Event) Fields {
	k := kindOf(e.Type)
	fl := Fields{
		Type:      k.name,
		Emoji:     k.emoji,
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format(time.TimeOnly),
	}
	if t := subject(e); t != nil {
		fl.Title = t.Title
		fl.Artist = t.Artist()
		fl.Album = t.Album
		fl.URI = t.URI
		fl.Duration = core.FormatDuration(t.Duration)
	}
	if c := e.Current; c != nil {
		fl.Device = c.DeviceName()
		fl.Volume = c.Volume
		fl.Progress = core.FormatDuration(c.Progress)
	}
	return fl
}

// Format renders e. A template that fails to execute falls back to the
// default line.
func (f *Formatter) Format(e Event) string {
	fl := fieldsOf(e)
	if f.tmpl != nil {
		var sb strings.Builder
		if err := f.tmpl.Execute(&sb, fl); err == nil {
			return sb.String()
		}
	}

	var parts []string
	if f.timestamp {
		parts = append(parts, fl.Time)
	}
	if f.emoji {
		parts = append(parts, fl.Emoji)
	}
	return strings.Join(append(parts, describe(e, fl)), " ")
}

// subject is the track an event is about: the one that ended for
// completions, skips and stops, the current one otherwise.
func subject(e Event) *core.Track {
	s := e.Current
	switch e.Type {
	case EventTrackComplete, EventTrackSkip, EventStop:
		s = e.Previous
	}
	if s == nil {
		return nil
	}
	return s.Track
}

func describe(e Event, fl Fields) string {
	k := kindOf(e.Type)
	switch {
	case k.verb != "" && fl.Title != "":
		return fmt.Sprintf("%s: %s - %s", k.verb, fl.Artist, fl.Title)
	case e.Type == EventVolumeChange && e.Current != nil:
		return fmt.Sprintf("Volume: %d%%", fl.Volume)
	case e.Type == EventDeviceChange && fl.Device != "":
		return "Device: " + fl.Device
	}
	return k.fallback
}
