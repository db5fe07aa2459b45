package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/kburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Column is one bar in a ColumnChart.
type Column struct {
	Label    string
	Value    float64
	Forecast bool
}

// ColumnChart renders vertical bars, recorded values in blue and forecast
// values in orange, with a label row underneath. Each column is colW wide.
func ColumnChart(cols []Column, height, colW int) string {
	if len(cols) == 0 || height < 1 {
		return ""
	}
	t := theme.Active
	colW = max(colW, 3)

	peak := 0.0
	for _, c := range cols {
		peak = max(peak, c.Value)
	}
	if peak == 0 {
		peak = 1
	}

	// Eighth-block resolution per row.
	blocks := []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
	levels := make([]int, len(cols))
	for i, c := range cols {
		levels[i] = int(c.Value / peak * float64(height*8))
	}

	var b strings.Builder
	for row := height - 1; row >= 0; row-- {
		for i, c := range cols {
			fill := max(0, min(levels[i]-row*8, 8))
			color := t.Blue
			if c.Forecast {
				color = t.Orange
			}
			cell := strings.Repeat(blocks[fill], colW-1) + " "
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(cell))
		}
		b.WriteByte('\n')
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	for _, c := range cols {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", colW, truncate(c.Label, colW-1))))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
