package cli

import (
	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/tui"
	"github.com/tessro/jukebox/internal/wizard"
)

var tuiTheme string

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"ui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, progress, device
  • History - recently played tracks
  • Search - debounced search over the enabled sources

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search
  Space        Play/Pause
  n            Next track
  p            Previous track
  ←/→          Seek 10s
  h            Toggle history
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiTheme, "theme", "", "color theme: auto, dark or light")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return errNoTerminal
	}
	if tuiTheme != "" {
		cfg.TUI.Theme = tuiTheme
		if err := cfg.TUI.Validate(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	return withSession(ctx, session.Options{Poll: true, ServeMetrics: true}, func(sess *session.Session) error {
		return tui.Run(ctx, sess)
	})
}
