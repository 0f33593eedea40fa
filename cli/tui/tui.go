package tui

import (
	"fmt"
	"slices"
)

// Run starts the appropriate read-only TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	switch viewType {
	case "result", "health":
		return RunResultTUI(viewType, data)
	case "stats":
		return RunStatsTUI(data)
	default:
		return fmt.Errorf("unknown view type: %s", viewType)
	}
}

// IsTUISupported returns true if the view type supports read-only TUI
// mode. The verify view is interactive and launched directly.
func IsTUISupported(viewType string) bool {
	return slices.Contains(SupportedTUIViews(), viewType)
}

// SupportedTUIViews returns the view types that support read-only TUI.
func SupportedTUIViews() []string {
	return []string{"result", "health", "stats"}
}
