package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current playback status",
	Long:  `Shows what is playing on the active Spotify device.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		state := sess.Playback.Snapshot()
		if JSONOutput() {
			return printJSON(statusJSON(state))
		}
		fmt.Print(formatStatus(state))
		return nil
	})
}

func statusJSON(state *core.PlaybackState) map[string]any {
	if !state.HasTrack() {
		return map[string]any{
			"playing": false,
			"message": "No active playback",
		}
	}

	out := map[string]any{
		"is_playing": state.IsPlaying,
		"volume":     state.Volume,
		"track": map[string]any{
			"id":          state.Track.ID,
			"title":       state.Track.Title,
			"artist":      state.Track.Artist(),
			"album":       state.Track.Album,
			"duration_ms": state.DurationMs(),
			"uri":         state.Track.URI,
		},
		"progress_ms":      state.ProgressMs(),
		"progress_percent": state.ProgressPercent(),
	}

	if state.Device != nil {
		out["device"] = map[string]any{
			"id":        state.Device.ID,
			"name":      state.Device.Name,
			"type":      state.Device.Type,
			"is_active": state.Device.IsActive,
		}
	}
	return out
}

func formatStatus(state *core.PlaybackState) string {
	if !state.HasTrack() {
		return "No active playback\n"
	}

	playIcon := "▶"
	if !state.IsPlaying {
		playIcon = "⏸"
	}

	s := fmt.Sprintf("%s %s\n", playIcon, state.Track.Title)
	s += fmt.Sprintf("  %s — %s\n", state.Track.Artist(), state.Track.Album)
	s += fmt.Sprintf("  %s %s / %s\n",
		FormatProgress(state.ProgressMs(), state.DurationMs(), 30),
		core.FormatDuration(state.Progress),
		core.FormatDuration(state.Track.Duration))

	if state.Device != nil {
		s += fmt.Sprintf("  📱 %s", state.Device.Name)
		if state.Volume > 0 {
			s += fmt.Sprintf(" (🔊 %d%%)", state.Volume)
		}
		s += "\n"
	}
	return s
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
