package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func currentVersion() versionInfo {
	v := versionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	// go install builds carry no ldflags; fall back to the module version.
	if v.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v.Version = bi.Main.Version
		}
	}
	return v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := currentVersion()
		if JSONOutput() {
			return printJSON(v)
		}

		fmt.Printf("jukebox %s\n", v.Version)
		if Verbose() {
			fmt.Printf("  commit:     %s\n", v.Commit)
			fmt.Printf("  built:      %s\n", v.BuildDate)
			fmt.Printf("  go version: %s\n", v.GoVersion)
			fmt.Printf("  platform:   %s\n", v.Platform)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
