package cli

import (
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Faint(true)
	styleCreated = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleUpdated = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func styled(style lipgloss.Style, s string) string {
	if !isTTY() {
		return s
	}
	return style.Render(s)
}

// emit writes v as JSON under --json, otherwise the human-readable text.
func emit(v any, human func() string) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	os.Stdout.WriteString(human() + "\n")
	return nil
}

// relativeTime renders an ISO-8601 timestamp as "3 days ago", falling back
// to the raw string when it doesn't parse.
func relativeTime(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return humanize.Time(t)
}
