package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/tail"
)

const tailBacklog = 5

var (
	tailEmoji     bool
	tailTimestamp bool
	tailFormat    string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch for playback state changes and print them as they happen.

Events tracked:
  - Track changes (new song started)
  - Track completions (song finished)
  - Track skips (song skipped before completion)
  - Pause/Resume and stop
  - Volume changes
  - Device changes

--format takes a Go template over .Type, .Time, .Title, .Artist, .Album,
.URI, .Device, .Progress and .Duration. With --json each event is printed
as one JSON object per line.

When [metrics] is enabled, the metrics endpoint is served while tail runs.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailEmoji, "emoji", true, "prefix events with emoji")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamps", "t", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	opts := []tail.FormatterOption{
		tail.WithEmoji(tailEmoji),
		tail.WithTimestamp(tailTimestamp),
	}
	if tailFormat != "" {
		tmpl, err := tail.ParseTemplate(tailFormat)
		if err != nil {
			return err
		}
		opts = append(opts, tail.WithTemplate(tmpl))
	}
	formatter := tail.NewFormatter(opts...)

	ctx := cmd.Context()
	return withSession(ctx, session.Options{ServeMetrics: true}, func(sess *session.Session) error {
		if err := requireAuth(sess); err != nil {
			return err
		}
		if addr := sess.MetricsAddr(); addr != "" {
			logger.Info("Serving metrics", zap.String("addr", addr))
		}

		if !JSONOutput() {
			showBacklog(os.Stdout, sess.Recent.Entries())
		}

		watcher := tail.NewWatcher(sess.Playback)
		sess.Playback.Start(ctx)
		return follow(ctx, watcher, formatter, os.Stdout)
	})
}

// follow prints watcher events until ctx is cancelled or the stream ends.
func follow(ctx context.Context, watcher *tail.Watcher, formatter *tail.Formatter, w io.Writer) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Run(ctx)
	}()

	enc := json.NewEncoder(w)
	for event := range watcher.Events() {
		if JSONOutput() {
			if err := enc.Encode(event); err != nil {
				return err
			}
			continue
		}
		_, _ = fmt.Fprintln(w, formatter.Format(event))
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// showBacklog prints the last few recently played tracks, oldest first.
func showBacklog(w io.Writer, entries []core.HistoryEntry) {
	n := min(len(entries), tailBacklog)
	for i := n - 1; i >= 0; i-- {
		e := entries[i]
		prefix := ""
		if tailTimestamp && !e.PlayedAt.IsZero() {
			prefix = e.PlayedAt.Local().Format("15:04:05") + " "
		}
		if tailEmoji {
			prefix += "⏪ "
		}
		_, _ = fmt.Fprintf(w, "%s%s — %s\n", prefix, e.Artist, e.Title)
	}
}
