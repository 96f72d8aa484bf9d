// Package styles holds the lipgloss styles shared by the TUI and the
// search wizard. Colors come from the Catppuccin palette.
package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor

	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Info    lipgloss.TerminalColor

	Surface   lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	TextMuted lipgloss.TerminalColor
	TextDim   lipgloss.TerminalColor
)

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	ErrorText lipgloss.Style
	Selected  lipgloss.Style
)

// Border styles
var (
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	Apply("auto")
}

// Apply switches the palette. theme is "dark", "light" or "auto", which
// follows the terminal background.
func Apply(theme string) {
	pick := func(light, dark string) lipgloss.TerminalColor {
		switch theme {
		case "dark":
			return lipgloss.Color(dark)
		case "light":
			return lipgloss.Color(light)
		default:
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
	}
	l, d := catppuccin.Latte, catppuccin.Mocha

	Primary = pick(l.Mauve().Hex, d.Mauve().Hex)
	Secondary = pick(l.Teal().Hex, d.Teal().Hex)
	Accent = pick(l.Peach().Hex, d.Peach().Hex)
	Success = pick(l.Green().Hex, d.Green().Hex)
	Warning = pick(l.Yellow().Hex, d.Yellow().Hex)
	Error = pick(l.Red().Hex, d.Red().Hex)
	Info = pick(l.Blue().Hex, d.Blue().Hex)
	Surface = pick(l.Surface0().Hex, d.Surface0().Hex)
	Border = pick(l.Overlay0().Hex, d.Overlay0().Hex)
	Text = pick(l.Text().Hex, d.Text().Hex)
	TextMuted = pick(l.Subtext0().Hex, d.Subtext0().Hex)
	TextDim = pick(l.Overlay1().Hex, d.Overlay1().Hex)

	Title = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Dim = lipgloss.NewStyle().Foreground(TextDim)
	Playing = lipgloss.NewStyle().Foreground(Success)
	Paused = lipgloss.NewStyle().Foreground(Warning)
	ErrorText = lipgloss.NewStyle().Foreground(Error)
	Selected = lipgloss.NewStyle().Background(Surface).Foreground(Text)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
}

// Panel creates a bordered panel style
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// DeviceIcon returns an icon for device type
func DeviceIcon(deviceType string) string {
	switch strings.ToLower(deviceType) {
	case "computer":
		return "💻"
	case "phone", "smartphone":
		return "📱"
	case "speaker":
		return "🔊"
	case "tv":
		return "📺"
	default:
		return "🎧"
	}
}

// Truncate shortens s to width runes, ending with an ellipsis when cut.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
