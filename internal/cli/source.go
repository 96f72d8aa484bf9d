package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/session"
	"github.com/tessro/jukebox/internal/wizard"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage audio sources",
	Long:  `List audio sources and choose which one search uses.`,
}

var sourceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List audio sources",
	RunE:    runSourceList,
}

var sourceUseCmd = &cobra.Command{
	Use:   "use [source]",
	Short: "Select the active audio source",
	Long: `Select the source used by search and play. The choice is remembered
between runs. Without an argument, shows a picker.

Sources:
  openverse     Openverse (public domain and Creative Commons)
  royaltyfree   Jamendo (royalty-free)
  spotify       Spotify catalog (requires login)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSourceUse,
}

func init() {
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceUseCmd)
	rootCmd.AddCommand(sourceCmd)
}

type sourceInfo struct {
	ID      core.SourceID `json:"id"`
	Name    string        `json:"name"`
	Enabled bool          `json:"enabled"`
	Active  bool          `json:"active"`
}

func listSources(sess *session.Session) []sourceInfo {
	active := sess.Sources.ActiveID()
	names := make(map[core.SourceID]string)
	for _, src := range sess.Sources.Enabled() {
		names[src.ID()] = src.Name()
	}

	out := make([]sourceInfo, 0, len(core.SourceIDs))
	for _, id := range core.SourceIDs {
		name, enabled := names[id]
		if !enabled {
			name = string(id)
		}
		out = append(out, sourceInfo{
			ID:      id,
			Name:    name,
			Enabled: enabled,
			Active:  enabled && id == active,
		})
	}
	return out
}

func runSourceList(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), session.Options{}, func(sess *session.Session) error {
		sources := listSources(sess)
		if JSONOutput() {
			return printJSON(sources)
		}

		t := NewTable("", "ID", "NAME", "STATUS")
		for _, s := range sources {
			status := "disabled"
			if s.Enabled {
				status = "enabled"
			}
			t.Row(StatusIcon(s.Active), string(s.ID), s.Name, status)
		}
		t.Flush()
		return nil
	})
}

func runSourceUse(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), session.Options{}, func(sess *session.Session) error {
		var id core.SourceID
		if len(args) > 0 {
			id = core.SourceID(args[0])
		} else {
			picked, err := pickSource(sess)
			if err != nil {
				return err
			}
			id = picked
		}

		if err := sess.Sources.SetActive(id); err != nil {
			return err
		}
		src, _ := sess.Sources.Get(id)
		printResult(map[string]any{
			"status": "updated",
			"source": id,
		}, fmt.Sprintf("Now searching %s", src.Name()))
		return nil
	})
}

func pickSource(sess *session.Session) (core.SourceID, error) {
	if !wizard.CanInteract(JSONOutput()) {
		return "", fmt.Errorf("source required (openverse, royaltyfree, spotify)")
	}

	var options []huh.Option[core.SourceID]
	for _, s := range listSources(sess) {
		if !s.Enabled {
			continue
		}
		label := s.Name
		if s.Active {
			label += " [active]"
		}
		options = append(options, huh.NewOption(label, s.ID))
	}

	selected := sess.Sources.ActiveID()
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[core.SourceID]().
				Title("Select audio source").
				Description("Search and play use this source").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return selected, nil
}
