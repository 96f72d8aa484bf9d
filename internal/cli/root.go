package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tessro/jukebox/internal/config"
	apperrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/logging"
	"github.com/tessro/jukebox/internal/session"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var errNoTerminal = errors.New("this command needs an interactive terminal")

var rootCmd = &cobra.Command{
	Use:   "jukebox",
	Short: "Search open audio catalogs and control Spotify playback",
	Long: `Jukebox searches public-domain and Creative Commons audio catalogs,
keeps a recently played list in sync with Spotify, and controls playback
on the active Spotify device.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.jukeboxrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	logger = logging.New(cfg.Log, logging.Options{Verbose: verbose})
	return nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// openSession builds and initialises a session for one command. The caller
// must Dispose it.
func openSession(ctx context.Context, opts session.Options) (*session.Session, error) {
	sess, err := session.New(cfg, session.Deps{Logger: logger})
	if err != nil {
		return nil, err
	}
	if err := sess.Init(ctx, opts); err != nil {
		_ = sess.Dispose()
		return nil, err
	}
	return sess, nil
}

// withSession runs fn on a fresh session and disposes it afterwards.
func withSession(ctx context.Context, opts session.Options, fn func(*session.Session) error) error {
	sess, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Dispose(); err != nil {
			logger.Warn("Session cleanup failed", zap.Error(err))
		}
	}()
	return fn(sess)
}

// requireAuth fails with a login hint when no Spotify token is stored.
func requireAuth(sess *session.Session) error {
	if !sess.Auth.IsAuthenticated() {
		return apperrors.ErrNotAuthenticated
	}
	return nil
}
