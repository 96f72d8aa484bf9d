package source

import (
	"time"

	"github.com/tessro/jukebox/internal/core"
)

// secondsDuration converts a catalog duration in seconds to its display
// string and millisecond value. Zero means unknown.
func secondsDuration(seconds float64) (string, int) {
	if seconds <= 0 {
		return "", 0
	}
	d := time.Duration(seconds * float64(time.Second))
	return core.FormatDuration(d), int(seconds * 1000)
}
