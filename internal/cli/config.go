package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/config"
)

const configHeader = "# Jukebox Configuration\n# Environment variables (JUKEBOX_*) and a local .env file override these values.\n\n"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing jukebox configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys are dotted paths into the file;
values are parsed as TOML (numbers, booleans, arrays) and fall back to
plain strings. The result must pass validation before it is written.

Examples:
  jukebox config set spotify.client_id abc123
  jukebox config set session.poll_interval 3000
  jukebox config set search.licenses '["pd"]'
  jukebox config set sources.spotify.enabled true
  jukebox config set tui.theme dark`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetSourceCmd = &cobra.Command{
	Use:   "set-source",
	Short: "Interactively select the active audio source",
	Long:  `Shows a picker to select the audio source used by search and play.`,
	Args:  cobra.NoArgs,
	RunE:  runSourceUse,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetSourceCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	printResult(map[string]any{
		"path":   path,
		"exists": err == nil,
	}, path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'jukebox config init' first", configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}
	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set your Spotify client ID in the config file or via JUKEBOX_SPOTIFY_CLIENT_ID")
	fmt.Println("  2. Run 'jukebox auth login' to authenticate with Spotify")
	fmt.Println("  3. Optionally set sources.royaltyfree.client_id for Jamendo search")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'jukebox config init' first", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]any)
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := setKey(raw, key, parseValue(value)); err != nil {
		return err
	}
	if err := checkConfig(raw); err != nil {
		return err
	}

	if err := writeConfigFile(configPath, raw); err != nil {
		return err
	}

	printResult(map[string]any{
		"status": "updated",
		"key":    key,
		"value":  value,
	}, fmt.Sprintf("Set %s = %s", key, value))
	return nil
}

// parseValue reads s as a TOML value, falling back to a plain string.
func parseValue(s string) any {
	var v struct{ V any }
	if _, err := toml.Decode("V = "+s, &v); err == nil {
		return v.V
	}
	return s
}

// setKey assigns value at a dotted path, creating tables as needed.
func setKey(raw map[string]any, key string, value any) error {
	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., spotify.client_id)")
	}

	table := raw
	for _, p := range parts[:len(parts)-1] {
		if p == "" {
			return fmt.Errorf("invalid key: %s", key)
		}
		next, ok := table[p].(map[string]any)
		if !ok {
			if _, exists := table[p]; exists {
				return fmt.Errorf("%s is not a table", p)
			}
			next = make(map[string]any)
			table[p] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = value
	return nil
}

// checkConfig round-trips raw through the typed config, rejecting unknown
// keys and values that fail validation.
func checkConfig(raw map[string]any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	var c config.Config
	md, err := toml.Decode(buf.String(), &c)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key: %s", undecoded[0])
	}

	c.ApplyDefaults()
	return c.Validate()
}

func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
