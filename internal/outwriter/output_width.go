package outwriter

import (
	"os"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"golang.org/x/term"
)

// Bounds for the player name column.
const (
	minNameWidth = 12
	maxNameWidth = 40
)

// getTerminalWidth returns the --width override, the detected terminal width,
// or 80 when neither is available.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// getMaxNameWidth calculates the room left for a name column once the
// other columns, which need reserved characters, are laid out.
func getMaxNameWidth(cfg *contract.Config, reserved int) int {
	// Table borders, separators, and padding
	available := getTerminalWidth(cfg) - reserved - 10
	return min(max(available, minNameWidth), maxNameWidth)
}
