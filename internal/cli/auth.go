package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/browser"
	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/spotify/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify authentication",
	Long:  `Commands for managing Spotify OAuth authentication.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Spotify",
	Long:  `Opens a browser to authenticate with Spotify using OAuth PKCE flow.`,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	Long:  `Removes the stored Spotify OAuth tokens from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows the current Spotify authentication status.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

// withTokens runs fn on a session that has not been initialised; auth
// commands only need the token store.
func withTokens(fn func(*session.Session) error) error {
	sess, err := session.New(cfg, session.Deps{Logger: logger})
	if err != nil {
		return err
	}
	defer func() { _ = sess.Dispose() }()
	return fn(sess)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if cfg.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.client_id not configured. Set it in ~/.jukeboxrc or via JUKEBOX_SPOTIFY_CLIENT_ID")
	}

	// Prompts go to stderr so --json output stays parseable.
	out := io.Writer(os.Stdout)
	if JSONOutput() {
		out = os.Stderr
	}

	return withTokens(func(sess *session.Session) error {
		open := func(url string) error {
			_, _ = fmt.Fprintln(out, "Opening browser for Spotify authentication...")
			if err := browser.Open(url); err != nil {
				_, _ = fmt.Fprintf(out, "Could not open browser automatically.\n")
				_, _ = fmt.Fprintf(out, "Please open this URL in your browser:\n\n%s\n\n", url)
			}
			_, _ = fmt.Fprintln(out, "Waiting for authentication...")
			return nil
		}

		if err := auth.Login(cmd.Context(), sess.AuthConfig, sess.Tokens, open, logger.Named("auth")); err != nil {
			return err
		}

		tok := sess.Tokens.Current()
		printResult(map[string]any{
			"status":     "authenticated",
			"expires_at": tok.ExpiresAt,
			"scope":      tok.Scope,
		}, "Authentication successful! Token stored.")
		return nil
	})
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	return withTokens(func(sess *session.Session) error {
		if sess.Tokens.Current() == nil {
			printResult(map[string]any{"status": "not_authenticated"}, "Not authenticated with Spotify.")
			return nil
		}

		if err := sess.Tokens.Clear(); err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}

		printResult(map[string]any{"status": "logged_out"}, "Logged out of Spotify.")
		return nil
	})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	return withTokens(func(sess *session.Session) error {
		tok := sess.Tokens.Current()
		if tok == nil {
			if JSONOutput() {
				return printJSON(map[string]any{"authenticated": false})
			}
			fmt.Println("Not authenticated with Spotify.")
			fmt.Println("Run 'jukebox auth login' to authenticate.")
			return nil
		}

		// A failed refresh means the stored grant is no longer usable.
		if _, err := sess.Tokens.ValidToken(cmd.Context()); err != nil {
			if JSONOutput() {
				return printJSON(map[string]any{
					"authenticated": true,
					"expired":       true,
					"error":         err.Error(),
				})
			}
			fmt.Printf("Token may be expired or invalid: %v\n", err)
			fmt.Println("Run 'jukebox auth login' to re-authenticate.")
			return nil
		}

		tok = sess.Tokens.Current()
		if JSONOutput() {
			return printJSON(map[string]any{
				"authenticated": true,
				"expired":       false,
				"expires_at":    tok.ExpiresAt,
				"scope":         tok.Scope,
			})
		}
		fmt.Println("Authenticated with Spotify.")
		fmt.Printf("Token expires: %s (%s)\n",
			tok.ExpiresAt.Local().Format(time.RFC3339),
			humanize.RelTime(tok.ExpiresAt, time.Now(), "ago", "from now"))
		if tok.Scope != "" {
			fmt.Printf("Scopes: %s\n", tok.Scope)
		}
		return nil
	})
}
