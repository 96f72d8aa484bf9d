// Package wizard holds the interactive prompts used by one-shot commands
// when they run in a terminal.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/search"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// Stream is the debounced query pipe the wizard types into.
type Stream interface {
	Submit(source core.SourceID, params core.SearchParams)
	Results() <-chan search.Result
}

// Sources lists the catalogs tab cycles through.
type Sources interface {
	Enabled() []core.MusicSource
	Next(from core.SourceID) core.SourceID
}

// SearchOptions configures the search wizard.
type SearchOptions struct {
	Source core.SourceID
	// Params supplies the licence filter and page size; Query is the
	// initial input.
	Params core.SearchParams
}

// SearchModel is the bubbletea model for the search wizard.
type SearchModel struct {
	input     textinput.Model
	stream    Stream
	sources   Sources
	source    core.SourceID
	params    core.SearchParams
	results   []core.AudioItem
	cursor    int
	selected  *core.AudioItem
	err       error
	searching bool
	width     int
	height    int
}

type resultMsg search.Result

// Styles
var (
	searchResultStyle   = lipgloss.NewStyle().PaddingLeft(2)
	searchSelectedStyle = lipgloss.NewStyle().PaddingLeft(2)
	searchTabStyle      = lipgloss.NewStyle().Padding(0, 2)
)

// NewSearchModel creates a new search wizard model.
func NewSearchModel(stream Stream, sources Sources, opts SearchOptions) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search for music…"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50
	ti.SetValue(opts.Params.Query)

	return SearchModel{
		input:     ti,
		stream:    stream,
		sources:   sources,
		source:    opts.Source,
		params:    opts.Params,
		searching: strings.TrimSpace(opts.Params.Query) != "",
		width:     80,
		height:    20,
	}
}

// Init submits the initial query, if any, and starts listening for results.
func (m SearchModel) Init() tea.Cmd {
	if m.searching {
		m.stream.Submit(m.source, m.params)
	}
	return tea.Batch(textinput.Blink, m.waitForResult())
}

func (m SearchModel) waitForResult() tea.Cmd {
	ch := m.stream.Results()
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return resultMsg(r)
	}
}

func (m *SearchModel) submit() {
	params := m.params
	params.Query = m.input.Value()
	m.searching = strings.TrimSpace(params.Query) != ""
	m.stream.Submit(m.source, params)
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.cursor < len(m.results) {
				item := m.results[m.cursor]
				m.selected = &item
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case "tab":
			m.source = m.sources.Next(m.source)
			m.cursor = 0
			m.submit()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case resultMsg:
		if msg.Source == m.source {
			m.searching = false
			m.results = msg.Items
			m.err = msg.Err
			m.cursor = 0
		}
		return m, m.waitForResult()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.submit()
	}
	return m, cmd
}

// View renders the model.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("🔍 Search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	active := searchTabStyle.Background(styles.Primary).Foreground(styles.Surface)
	for _, src := range m.sources.Enabled() {
		if src.ID() == m.source {
			b.WriteString(active.Render(src.Name()))
		} else {
			b.WriteString(searchTabStyle.Foreground(styles.TextDim).Render(src.Name()))
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render("Error: " + m.err.Error()))
	case m.searching:
		b.WriteString("Searching...")
	case len(m.results) == 0 && m.input.Value() != "":
		b.WriteString("No results found")
	default:
		maxResults := max(m.height-10, 5)
		for i, item := range m.results {
			if i >= maxResults {
				b.WriteString(styles.Subtitle.Render(fmt.Sprintf("  ...and %d more", len(m.results)-i)))
				break
			}

			line := item.Title + " " + styles.Subtitle.Render(item.Artist)
			if item.Duration != "" {
				line += " " + styles.Dim.Render(item.Duration)
			}
			if !item.Playable() {
				line += " " + styles.Dim.Render("["+string(item.License)+"]")
			}

			if i == m.cursor {
				b.WriteString(searchSelectedStyle.Inherit(styles.Selected).Render("▸ " + line))
			} else {
				b.WriteString(searchResultStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("↑/↓ navigate • tab switch source • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected item, or nil if none.
func (m SearchModel) Selected() *core.AudioItem {
	return m.selected
}

// RunSearch runs the search wizard and returns the selected item.
func RunSearch(stream Stream, sources Sources, opts SearchOptions) (*core.AudioItem, error) {
	p := tea.NewProgram(NewSearchModel(stream, sources, opts), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SearchModel).Selected(), nil
}
