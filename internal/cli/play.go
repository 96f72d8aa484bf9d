package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/core"
	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/wizard"
)

var (
	playURIs   []string
	playSource string
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Start or resume playback",
	Long: `Search the active source and play the first playable result.
Without arguments, resumes current playback.

Examples:
  jukebox play                              # Resume playback
  jukebox play "rainy jazz"                 # Search and play
  jukebox play --source spotify "blue in green"
  jukebox play --uri spotify:track:xxx      # Play specific URIs`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringSliceVar(&playURIs, "uri", nil, "play specific Spotify URIs")
	playCmd.Flags().StringVarP(&playSource, "source", "s", "", "audio source to search (openverse, royaltyfree, spotify)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	if len(playURIs) == 0 && query == "" {
		return runResume(cmd, args)
	}

	ctx := cmd.Context()
	return withPlayback(ctx, func(sess *session.Session) error {
		if len(playURIs) > 0 {
			return playByURI(ctx, sess, playURIs)
		}
		return searchAndPlay(ctx, sess, query)
	})
}

func playByURI(ctx context.Context, sess *session.Session, uris []string) error {
	if err := sess.Playback.PlayTrack(ctx, uris, nil); err != nil {
		return fmt.Errorf("failed to play URI: %w", err)
	}

	printResult(map[string]any{
		"status": "playing",
		"uris":   uris,
	}, "▶ Playing "+strings.Join(uris, ", "))
	return nil
}

func searchAndPlay(ctx context.Context, sess *session.Session, query string) error {
	id, err := resolveSource(sess, playSource)
	if err != nil {
		return err
	}

	items, err := sess.Search.SearchIn(ctx, id, searchParams(query))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	sess.Queries.Add(query)

	item := wizard.FirstPlayable(items)
	if item == nil {
		if len(items) > 0 {
			return apperrors.WithSuggestion(
				fmt.Errorf("no results for %q can play on a Spotify device", query),
				"Use 'jukebox search' to get audio URLs, or search with --source spotify",
			)
		}
		return fmt.Errorf("no results found for %q", query)
	}

	return playItem(ctx, sess, *item)
}

// playItem starts a playable item and records it in the history.
func playItem(ctx context.Context, sess *session.Session, item core.AudioItem) error {
	entry := item.HistoryEntry()
	if err := sess.Playback.PlayTrack(ctx, []string{item.URI}, &entry); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	printResult(map[string]any{
		"status": "playing",
		"id":     item.ID,
		"title":  item.Title,
		"artist": item.Artist,
		"uri":    item.URI,
		"source": item.Source,
	}, fmt.Sprintf("▶ Playing: %s — %s", item.Title, item.Artist))
	return nil
}

// resolveSource returns the source named by flag, or the active source.
func resolveSource(sess *session.Session, flag string) (core.SourceID, error) {
	if flag == "" {
		return sess.Sources.ActiveID(), nil
	}
	src, err := sess.Sources.Get(core.SourceID(flag))
	if err != nil {
		return "", err
	}
	return src.ID(), nil
}

func searchParams(query string) core.SearchParams {
	return core.SearchParams{
		Query:    query,
		Licenses: cfg.Search.Licenses,
		PageSize: cfg.Search.PageSize,
	}
}
