package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/session"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle play/pause",
	Long:  `Pause when playing, resume otherwise.`,
	RunE:  runToggle,
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Long:  `Pause the current playback.`,
	RunE:  runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume playback",
	Long:  `Resume paused playback.`,
	RunE:  runResume,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track",
	Long:  `Skip to the next track in the queue.`,
	RunE:  runNext,
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track",
	Long:  `Go back to the previous track.`,
	RunE:  runPrev,
}

var seekNoResume bool

var seekCmd = &cobra.Command{
	Use:   "seek <position>",
	Short: "Seek within the current track",
	Long: `Move the playhead of the current track. Positions past the end of the
track are clamped.

Examples:
  jukebox seek 1:30       # minutes:seconds
  jukebox seek 1:02:03    # hours:minutes:seconds
  jukebox seek 45s        # Go duration
  jukebox seek 90000      # milliseconds`,
	Args: cobra.ExactArgs(1),
	RunE: runSeek,
}

var restartCmd = &cobra.Command{
	Use:     "restart",
	Aliases: []string{"replay"},
	Short:   "Restart current track",
	Long:    `Restart the current track from the beginning.`,
	RunE:    runRestart,
}

func init() {
	seekCmd.Flags().BoolVar(&seekNoResume, "no-resume", false, "stay paused after seeking")

	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(seekCmd)
	rootCmd.AddCommand(restartCmd)
}

// withPlayback opens a session, checks the login and loads the current
// snapshot before running fn.
func withPlayback(ctx context.Context, fn func(*session.Session) error) error {
	return withSession(ctx, session.Options{}, func(sess *session.Session) error {
		if err := requireAuth(sess); err != nil {
			return err
		}
		sess.Playback.Refresh(ctx)
		return fn(sess)
	})
}

func runToggle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		s := sess.Playback.Snapshot()
		wasPlaying := s != nil && s.IsPlaying
		if err := sess.Playback.TogglePlayPause(ctx); err != nil {
			return fmt.Errorf("failed to toggle playback: %w", err)
		}
		if wasPlaying {
			printResult(map[string]any{"status": "paused"}, "⏸ Paused")
		} else {
			printResult(map[string]any{"status": "playing"}, "▶ Resumed")
		}
		return nil
	})
}

func runPause(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		if s := sess.Playback.Snapshot(); s != nil && s.IsPlaying {
			if err := sess.Playback.TogglePlayPause(ctx); err != nil {
				return fmt.Errorf("failed to pause: %w", err)
			}
		}
		printResult(map[string]any{"status": "paused"}, "⏸ Paused")
		return nil
	})
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		if s := sess.Playback.Snapshot(); s == nil || !s.IsPlaying {
			if err := sess.Playback.TogglePlayPause(ctx); err != nil {
				return fmt.Errorf("failed to resume: %w", err)
			}
		}
		printResult(map[string]any{"status": "playing"}, "▶ Resumed")
		return nil
	})
}

func runNext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		if err := sess.Playback.Next(ctx); err != nil {
			return fmt.Errorf("failed to skip: %w", err)
		}
		printResult(map[string]any{"status": "skipped"}, "⏭ Skipped to next track")
		return nil
	})
}

func runPrev(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		if err := sess.Playback.Previous(ctx); err != nil {
			return fmt.Errorf("failed to go back: %w", err)
		}
		printResult(map[string]any{"status": "previous"}, "⏮ Previous track")
		return nil
	})
}

func runSeek(cmd *cobra.Command, args []string) error {
	target, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		if err := sess.Playback.SeekToMs(ctx, target, !seekNoResume); err != nil {
			return fmt.Errorf("failed to seek: %w", err)
		}
		pos := sess.Playback.Snapshot().ProgressMs()
		printResult(
			map[string]any{"status": "seeked", "position_ms": pos},
			"⏩ Seeked to "+core.FormatDuration(msDuration(pos)),
		)
		return nil
	})
}

func runRestart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		if err := sess.Playback.SeekToMs(ctx, 0, true); err != nil {
			return fmt.Errorf("failed to restart: %w", err)
		}
		printResult(map[string]any{"status": "restarted"}, "⏪ Restarted track")
		return nil
	})
}

// parsePosition reads a seek target in milliseconds. It accepts m:ss,
// h:mm:ss, a Go duration or a bare millisecond count.
func parsePosition(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty position")
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("invalid position: %s", s)
		}
		total := 0
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid position: %s", s)
			}
			if i > 0 && n >= 60 {
				return 0, fmt.Errorf("invalid position: %s", s)
			}
			total = total*60 + n
		}
		return total * 1000, nil
	}

	if ms, err := strconv.Atoi(s); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("position must not be negative: %s", s)
		}
		return ms, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid position: %s", s)
	}
	return int(d / time.Millisecond), nil
}
