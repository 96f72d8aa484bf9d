package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// NowPlaying is the left-hand panel: the current track, a progress bar and
// the device it is playing on.
type NowPlaying struct{}

func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render draws the panel. loading is true until the first poll completes.
func (n *NowPlaying) Render(state *core.PlaybackState, loading bool, width, height int, focused bool) string {
	body := []string{styles.PanelTitle("Now Playing", focused), ""}
	switch {
	case loading:
		body = append(body, styles.Muted.Render("Connecting…"))
	case !state.HasTrack():
		body = append(body, styles.Muted.Render("No track playing"))
	default:
		body = append(body, trackLines(state, width-4)...)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

func trackLines(state *core.PlaybackState, width int) []string {
	t := state.Track
	lines := []string{
		styles.StatusIcon(state.IsPlaying) + " " + styles.Title.Render(styles.Truncate(t.Title, width-4)),
		"  " + styles.Subtitle.Render(styles.Truncate(t.Artist(), width-2)),
	}
	if t.Album != "" {
		lines = append(lines, "  "+styles.Dim.Render(styles.Truncate(t.Album, width-2)))
	}

	// elapsed [bar] -remaining
	remaining := max(t.Duration-state.Progress, 0)
	lines = append(lines, "", fmt.Sprintf("%s %s -%s",
		core.FormatDuration(state.Progress),
		styles.ProgressBar(state.ProgressPercent(), max(width-15, 10)),
		core.FormatDuration(remaining)))

	if d := deviceLine(state); d != "" {
		lines = append(lines, "", styles.Muted.Render(d))
	}
	return lines
}

func deviceLine(state *core.PlaybackState) string {
	if state.Device == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styles.DeviceIcon(string(state.Device.Type)))
	b.WriteString(" ")
	b.WriteString(state.Device.Name)
	if state.Volume > 0 {
		fmt.Fprintf(&b, " 🔊 %d%%", state.Volume)
	}
	if !state.IsPlaying {
		b.WriteString(" · paused")
	}
	return b.String()
}
