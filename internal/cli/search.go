package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/wizard"
)

var (
	searchSource      string
	searchInteractive bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for audio",
	Long: `Search the active audio source. Results from open catalogs carry a
direct audio URL; Spotify results can be played on the active device.

With --interactive, opens a live search where Tab switches source and
Enter plays the selected result (or copies its audio URL).`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", "", "audio source to search (openverse, royaltyfree, spotify)")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "interactive search")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	ctx := cmd.Context()

	if searchInteractive {
		if !wizard.CanInteract(JSONOutput()) {
			return errNoTerminal
		}
		return withSession(ctx, session.Options{}, func(sess *session.Session) error {
			return runInteractiveSearch(ctx, sess, query)
		})
	}

	if query == "" {
		return fmt.Errorf("search query required")
	}

	return withSession(ctx, session.Options{}, func(sess *session.Session) error {
		id, err := resolveSource(sess, searchSource)
		if err != nil {
			return err
		}
		items, err := sess.Search.SearchIn(ctx, id, searchParams(query))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		sess.Queries.Add(query)

		if JSONOutput() {
			if items == nil {
				items = []core.AudioItem{}
			}
			return printJSON(map[string]any{
				"source": id,
				"query":  query,
				"items":  items,
			})
		}
		writeResults(os.Stdout, items)
		return nil
	})
}

func runInteractiveSearch(ctx context.Context, sess *session.Session, query string) error {
	id, err := resolveSource(sess, searchSource)
	if err != nil {
		return err
	}

	stream := sess.Search.NewStream(ctx, cfg.Search.DebounceDelay())
	defer stream.Close()

	item, err := wizard.RunSearch(stream, sess.Sources, wizard.SearchOptions{
		Source: id,
		Params: searchParams(query),
	})
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	if item.Source != id {
		if err := sess.Sources.SetActive(item.Source); err != nil {
			logger.Warn("Could not persist active source", zap.Error(err))
		}
	}

	if item.Playable() && sess.Auth.IsAuthenticated() {
		return playItem(ctx, sess, *item)
	}

	if err := clipboard.WriteAll(item.AudioURL); err == nil {
		fmt.Printf("📋 Copied audio URL for %s — %s\n", item.Title, item.Artist)
		return nil
	}
	fmt.Println(item.AudioURL)
	return nil
}

func writeResults(w io.Writer, items []core.AudioItem) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "No results found")
		return
	}

	t := NewTableWriter(w, "#", "TITLE", "ARTIST", "LICENSE", "LENGTH", "PLAY")
	for i, item := range items {
		target := item.URI
		if target == "" {
			target = item.AudioURL
		}
		t.Row(
			strconv.Itoa(i+1),
			TruncateString(item.Title, 40),
			TruncateString(item.Artist, 24),
			string(item.License),
			item.Duration,
			target,
		)
	}
	t.Flush()
}
