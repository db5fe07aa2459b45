package components

import (
	"strings"

	"github.com/theirongolddev/kburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom bar with left and right aligned parts.
func RenderStatusBar(width int, left, right string) string {
	t := theme.Active

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Render(left + strings.Repeat(" ", padding) + right)
}
