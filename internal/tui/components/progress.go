package components

import (
	"fmt"

	"github.com/theirongolddev/kburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForLife returns red/orange/yellow/green for the share of a horizon a
// balance still covers. Low coverage is the alarming end.
func ColorForLife(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct < 0.15:
		return t.Red
	case pct < 0.3:
		return t.Orange
	case pct < 0.5:
		return t.Yellow
	default:
		return t.Green
	}
}

// LifeBar renders a labeled bar for days covered out of a horizon.
func LifeBar(label string, days, horizon float64, labelW, barWidth int) string {
	t := theme.Active

	pct := 0.0
	if horizon > 0 {
		pct = max(0, min(days/horizon, 1))
	}
	color := ColorForLife(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + " " +
		bar.ViewAs(pct) + " " +
		valueStyle.Render(fmt.Sprintf("%5.1f d", days))
}
