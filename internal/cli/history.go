package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/session"
)

var (
	historyLimit    int
	historySearches bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played tracks",
	Long: `Show recently played tracks, newest first. When logged in, the list is
refreshed from Spotify first; otherwise the saved list is shown.

With --searches, shows recent search queries instead.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	historyCmd.Flags().BoolVar(&historySearches, "searches", false, "show recent search queries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	return withSession(cmd.Context(), session.Options{}, func(sess *session.Session) error {
		if historySearches {
			queries := sess.Queries.Entries()
			queries = queries[:min(len(queries), historyLimit)]
			if JSONOutput() {
				return printJSON(queries)
			}
			if len(queries) == 0 {
				fmt.Println("No recent searches")
			}
			for _, q := range queries {
				fmt.Println(q)
			}
			return nil
		}

		entries := sess.Recent.Entries()
		entries = entries[:min(len(entries), historyLimit)]
		if JSONOutput() {
			if entries == nil {
				entries = []core.HistoryEntry{}
			}
			return printJSON(entries)
		}
		writeHistory(os.Stdout, entries, time.Now())
		return nil
	})
}

func writeHistory(w io.Writer, entries []core.HistoryEntry, now time.Time) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No recently played tracks")
		return
	}

	t := NewTableWriter(w, "#", "TITLE", "ARTIST", "PLAYED")
	for i, e := range entries {
		played := ""
		if !e.PlayedAt.IsZero() {
			played = humanize.RelTime(e.PlayedAt, now, "ago", "from now")
		}
		t.Row(
			strconv.Itoa(i+1),
			TruncateString(e.Title, 40),
			TruncateString(e.Artist, 28),
			played,
		)
	}
	t.Flush()
}
