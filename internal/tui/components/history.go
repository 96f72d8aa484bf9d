package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// History displays the recently played list
type History struct {
	now func() time.Time
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{now: time.Now}
}

// Render renders the history panel. currentID marks the entry that is playing.
func (h *History) Render(entries []core.HistoryEntry, currentID string, width, height int, focused bool) string {
	title := styles.PanelTitle("Recently Played", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, currentID, width-4, height-4)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (h *History) renderHistory(entries []core.HistoryEntry, currentID string, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		ago := h.timeAgo(entry.PlayedAt)

		icon := styles.Dim.Render("♪")
		if entry.ID == currentID {
			icon = styles.Playing.Render("▶")
		}

		// icon, separators and the right-aligned time
		available := width - 6 - len(ago)
		artistSpace := min(max(available/3, 8), len([]rune(entry.Artist)))
		titleSpace := available - artistSpace

		info := fmt.Sprintf("%s — %s",
			styles.Truncate(entry.Title, titleSpace),
			styles.Dim.Render(styles.Truncate(entry.Artist, artistSpace)))

		line := icon + " " + info
		pad := max(width-lipgloss.Width(line)-len(ago), 1)
		lines = append(lines, line+lipgloss.NewStyle().Width(pad).Render("")+styles.Dim.Render(ago))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// timeAgo renders PlayedAt relative to now. Entries recorded locally have
// no timestamp and render as blank.
func (h *History) timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if h.now().Sub(t) < time.Minute {
		return "now"
	}
	return humanize.RelTime(t, h.now(), "ago", "from now")
}
