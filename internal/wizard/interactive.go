package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/jukebox/internal/core"
)

// IsTerminal returns true if stdin and stdout are both terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract reports whether a prompt may be shown. JSON output always
// disables prompts.
func CanInteract(jsonOutput bool) bool {
	return !jsonOutput && IsTerminal()
}

// FirstPlayable returns the first item that can be sent to the remote
// device, or nil.
func FirstPlayable(items []core.AudioItem) *core.AudioItem {
	for i := range items {
		if items[i].Playable() {
			return &items[i]
		}
	}
	return nil
}
