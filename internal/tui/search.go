package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/search"
	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/tui/styles"
)

const maxVisibleResults = 10

type searchResultMsg search.Result

// searchModel is the search overlay. Keystrokes go to a debounced stream;
// with an empty input the overlay lists recent queries instead.
type searchModel struct {
	sess   *session.Session
	stream *search.Stream
	input  textinput.Model

	visible   bool
	source    core.SourceID
	results   []core.AudioItem
	err       error
	searching bool
	cursor    int
}

func newSearchModel(ctx context.Context, sess *session.Session, input textinput.Model) *searchModel {
	return &searchModel{
		sess:   sess,
		stream: sess.Search.NewStream(ctx, sess.Config.Search.DebounceDelay()),
		input:  input,
		source: sess.Sources.ActiveID(),
	}
}

func (s *searchModel) waitForResult() tea.Cmd {
	ch := s.stream.Results()
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return searchResultMsg(r)
	}
}

func (s *searchModel) open() tea.Cmd {
	s.visible = true
	s.input.SetValue("")
	s.input.Focus()
	s.results = nil
	s.err = nil
	s.cursor = 0
	return textinput.Blink
}

func (s *searchModel) close() {
	s.visible = false
	s.input.Blur()
}

func (s *searchModel) params() core.SearchParams {
	return core.SearchParams{
		Query:    s.input.Value(),
		Licenses: s.sess.Config.Search.Licenses,
		PageSize: s.sess.Config.Search.PageSize,
	}
}

func (s *searchModel) submit() {
	s.searching = strings.TrimSpace(s.input.Value()) != ""
	s.stream.Submit(s.source, s.params())
}

func (s *searchModel) updateInput(msg tea.Msg) tea.Cmd {
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.cursor = 0
		s.submit()
	}
	return cmd
}

func (s *searchModel) setQuery(q string) tea.Cmd {
	s.input.SetValue(q)
	s.input.CursorEnd()
	s.cursor = 0
	s.submit()
	return nil
}

// cycleSource moves to the next enabled source and re-runs the query.
func (s *searchModel) cycleSource() tea.Cmd {
	s.source = s.sess.Sources.Next(s.source)
	s.cursor = 0
	s.err = s.sess.Sources.SetActive(s.source)
	s.submit()
	return nil
}

func (s *searchModel) apply(r search.Result) {
	if r.Source != s.source {
		return
	}
	s.searching = false
	s.results = r.Items
	s.err = r.Err
	s.cursor = min(s.cursor, max(len(s.results)-1, 0))
}

func (s *searchModel) suggestions() []string {
	if strings.TrimSpace(s.input.Value()) != "" {
		return nil
	}
	return s.sess.Queries.Entries()
}

func (s *searchModel) rows() int {
	if sg := s.suggestions(); sg != nil {
		return len(sg)
	}
	return len(s.results)
}

func (s *searchModel) moveCursor(delta int) {
	n := min(s.rows(), maxVisibleResults)
	if n == 0 {
		return
	}
	s.cursor = max(0, min(s.cursor+delta, n-1))
}

func (s *searchModel) selectedSuggestion() (string, bool) {
	sg := s.suggestions()
	if s.cursor < len(sg) {
		return sg[s.cursor], true
	}
	return "", false
}

func (s *searchModel) selected() (core.AudioItem, bool) {
	if s.cursor < len(s.results) {
		return s.results[s.cursor], true
	}
	return core.AudioItem{}, false
}

func (s *searchModel) view() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search"))
	b.WriteString("\n\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	b.WriteString(s.renderSourceTabs())
	b.WriteString("\n\n")

	switch {
	case s.err != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + s.err.Error()))
	case s.suggestions() != nil:
		s.renderSuggestions(&b)
	case s.searching:
		b.WriteString(styles.Muted.Render("Searching..."))
	case len(s.results) == 0:
		b.WriteString(styles.Muted.Render("No results found"))
	default:
		s.renderResults(&b)
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("tab:source  ↑/↓:nav  enter:play  esc:close"))

	content := lipgloss.NewStyle().Width(64).Padding(1, 2).Render(b.String())
	return styles.FocusedBorder.Render(content)
}

func (s *searchModel) renderSourceTabs() string {
	active := lipgloss.NewStyle().Padding(0, 1).Background(styles.Primary).Foreground(styles.Surface)
	inactive := lipgloss.NewStyle().Padding(0, 1).Foreground(styles.TextDim)

	var tabs []string
	for _, src := range s.sess.Sources.Enabled() {
		if src.ID() == s.source {
			tabs = append(tabs, active.Render(src.Name()))
		} else {
			tabs = append(tabs, inactive.Render(src.Name()))
		}
	}
	return strings.Join(tabs, "")
}

func (s *searchModel) renderSuggestions(b *strings.Builder) {
	sg := s.suggestions()
	if len(sg) == 0 {
		b.WriteString(styles.Muted.Render("Type to search"))
		return
	}
	b.WriteString(styles.Label.Render("Recent searches"))
	b.WriteString("\n")
	for i, q := range sg {
		if i >= maxVisibleResults {
			break
		}
		s.writeRow(b, i, q)
	}
}

func (s *searchModel) renderResults(b *strings.Builder) {
	for i, item := range s.results {
		if i >= maxVisibleResults {
			b.WriteString(styles.Muted.Render(fmt.Sprintf("  ...and %d more", len(s.results)-i)))
			break
		}
		line := styles.Truncate(item.Title, 32) + " " + styles.Subtitle.Render(styles.Truncate(item.Artist, 20))
		if item.Duration != "" {
			line += " " + styles.Dim.Render(item.Duration)
		}
		if !item.Playable() {
			line += " " + styles.Dim.Render("["+string(item.License)+"]")
		}
		s.writeRow(b, i, line)
	}
}

func (s *searchModel) writeRow(b *strings.Builder, i int, line string) {
	if i == s.cursor {
		b.WriteString(styles.Selected.Render("> " + line))
	} else {
		b.WriteString("  " + line)
	}
	b.WriteString("\n")
}
