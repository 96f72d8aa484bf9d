// Package tui is the full-screen terminal UI: now playing, recently played
// and a debounced search overlay over the active audio source.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/search"
	"github.com/tessro/jukebox/internal/tui/components"
	"github.com/tessro/jukebox/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelHistory
)

const (
	seekStep      = 10 * time.Second
	redrawRate    = time.Second
	statusTimeout = 5 * time.Second
)

// Model is the main TUI model
type Model struct {
	ctx  context.Context
	sess *session.Session

	width        int
	height       int
	focusedPanel Panel
	showHistory  bool

	state     *core.PlaybackState
	snapshots <-chan *core.PlaybackState

	nowPlaying  *components.NowPlaying
	historyView *components.History

	showHelp bool
	search   *searchModel

	// Transient status line (errors and confirmations)
	status       string
	statusIsErr  bool
	statusExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model. The session must already be initialised
// with polling enabled.
func NewModel(ctx context.Context, sess *session.Session) Model {
	snapshots, _ := sess.Playback.Subscribe()

	ti := textinput.New()
	ti.Placeholder = "Search by title, artist or mood…"
	ti.CharLimit = 100
	ti.Width = 50

	showHistory := true
	if sess.Config.TUI.ShowHistory != nil {
		showHistory = *sess.Config.TUI.ShowHistory
	}

	return Model{
		ctx:         ctx,
		sess:        sess,
		showHistory: showHistory,
		state:       sess.Playback.Snapshot(),
		snapshots:   snapshots,
		nowPlaying:  components.NewNowPlaying(),
		historyView: components.NewHistory(),
		search:      newSearchModel(ctx, sess, ti),
	}
}

// Messages
type tickMsg time.Time
type stateMsg struct{ state *core.PlaybackState }
type errMsg struct{ err error }
type statusMsg string

func tick() tea.Cmd {
	return tea.Tick(redrawRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForState blocks on the playback subscription.
func waitForState(ch <-chan *core.PlaybackState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg{s}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForState(m.snapshots), m.search.waitForResult())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.statusExpiry.IsZero() && time.Now().After(m.statusExpiry) {
			m.status = ""
		}
		return m, tick()

	case stateMsg:
		m.state = msg.state
		return m, waitForState(m.snapshots)

	case searchResultMsg:
		m.search.apply(search.Result(msg))
		return m, m.search.waitForResult()

	case errMsg:
		m.setStatus(msg.err.Error(), true)
		return m, nil

	case statusMsg:
		m.setStatus(string(msg), false)
		return m, nil
	}

	if m.search.visible {
		return m, m.search.updateInput(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
	m.statusExpiry = time.Now().Add(statusTimeout)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.search.visible {
		return m.handleSearchKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		return m, m.search.open()
	case "tab", "shift+tab":
		if m.showHistory {
			m.focusedPanel = (m.focusedPanel + 1) % 2
		}
		return m, nil
	case "h":
		m.showHistory = !m.showHistory
		return m, nil
	case " ":
		return m, m.action(m.sess.Playback.TogglePlayPause)
	case "n":
		return m, m.action(m.sess.Playback.Next)
	case "p":
		return m, m.action(m.sess.Playback.Previous)
	case "left":
		return m, m.seekBy(-seekStep)
	case "right":
		return m, m.seekBy(seekStep)
	case "r":
		return m, m.action(func(ctx context.Context) error {
			m.sess.Playback.Refresh(ctx)
			return nil
		})
	case "y":
		return m, copyURI(m.state)
	}

	return m, nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.close()
		return m, nil
	case "enter":
		if q, ok := m.search.selectedSuggestion(); ok {
			return m, m.search.setQuery(q)
		}
		item, ok := m.search.selected()
		if !ok {
			return m, nil
		}
		m.sess.Queries.Add(m.search.input.Value())
		m.search.close()
		return m, m.playItem(item)
	case "up", "ctrl+p":
		m.search.moveCursor(-1)
		return m, nil
	case "down", "ctrl+n":
		m.search.moveCursor(1)
		return m, nil
	case "tab":
		return m, m.search.cycleSource()
	}
	return m, m.search.updateInput(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.search.stream.Close()
	return m, tea.Quit
}

// action runs a transport command off the UI goroutine.
func (m Model) action(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) seekBy(delta time.Duration) tea.Cmd {
	if !m.state.HasTrack() {
		return nil
	}
	target := m.state.ProgressMs() + int(delta/time.Millisecond)
	return m.action(func(ctx context.Context) error {
		return m.sess.Playback.SeekToMs(ctx, target, false)
	})
}

func (m Model) playItem(item core.AudioItem) tea.Cmd {
	if !item.Playable() {
		m.sess.Logger.Debug("Selected item is not playable remotely", zap.String("id", item.ID))
		return func() tea.Msg {
			if err := clipboard.WriteAll(item.AudioURL); err != nil {
				return statusMsg("Not playable on the remote device: " + item.AudioURL)
			}
			return statusMsg("Not playable on the remote device; audio URL copied")
		}
	}
	entry := item.HistoryEntry()
	return m.action(func(ctx context.Context) error {
		return m.sess.Playback.PlayTrack(ctx, []string{item.URI}, &entry)
	})
}

func copyURI(state *core.PlaybackState) tea.Cmd {
	if !state.HasTrack() || state.Track.URI == "" {
		return nil
	}
	uri := state.Track.URI
	return func() tea.Msg {
		if err := clipboard.WriteAll(uri); err != nil {
			return errMsg{err}
		}
		return statusMsg("Copied " + uri)
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.search.visible {
		return m.center(m.search.view())
	}

	height := m.height - 2
	var main string
	if m.showHistory {
		leftWidth := m.width * 55 / 100
		rightWidth := m.width - leftWidth - 2
		left := m.nowPlaying.Render(m.state, m.sess.Playback.IsLoading(), leftWidth-2, height-2, m.focusedPanel == PanelNowPlaying)
		right := m.historyView.Render(m.sess.Recent.Entries(), m.state.TrackID(), rightWidth-2, height-2, m.focusedPanel == PanelHistory)
		main = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	} else {
		main = m.nowPlaying.Render(m.state, m.sess.Playback.IsLoading(), m.width-4, height-2, true)
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  /:search  space:play/pause  n/p:skip  ←/→:seek  y:copy  h:history")
	if m.status != "" {
		if m.statusIsErr {
			status = styles.ErrorText.Render("Error: " + m.status)
		} else {
			status = styles.Highlight.Render(m.status)
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Jukebox - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search
  Tab          Switch panel
  h            Toggle history panel
  r            Refresh

  Playback
  ────────
  Space        Play/Pause
  n            Next track
  p            Previous track
  ←/→          Seek 10s
  y            Copy track URI

  Search
  ──────
  ↑/↓          Move selection
  Tab          Next source
  Enter        Play selected
  Esc          Close

  Press ? or Esc to close
`

	return m.center(styles.BorderStyle.Render(help))
}

func (m Model) center(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Run starts the TUI on an initialised session.
func Run(ctx context.Context, sess *session.Session) error {
	styles.Apply(sess.Config.TUI.Theme)

	p := tea.NewProgram(NewModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
