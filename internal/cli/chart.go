package cli

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/kburn/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// ChartWidth is the bar width of the widest row in RenderForecastChart.
const ChartWidth = 36

// RenderForecastChart draws recorded readings and forecast values as one
// horizontal bar per day. Readings are blue, forecasts orange, and a marker
// column shows the current appliance-based daily usage.
func RenderForecastChart(history []model.UsageSample, forecast []model.ForecastPoint, currentKWh float64) string {
	if len(history) == 0 && len(forecast) == 0 {
		return ""
	}

	peak := currentKWh
	for _, s := range history {
		peak = max(peak, s.KWh)
	}
	for _, p := range forecast {
		peak = max(peak, p.KWh)
	}
	if peak <= 0 {
		peak = 1
	}

	marker := -1
	if currentKWh > 0 {
		marker = min(int(currentKWh/peak*ChartWidth), ChartWidth-1)
	}

	row := func(day int, kwh float64, color lipgloss.Color, tag string) string {
		n := int(kwh / peak * ChartWidth)
		n = max(0, min(n, ChartWidth))

		var bar strings.Builder
		barStyle := lipgloss.NewStyle().Foreground(color)
		for i := 0; i < ChartWidth; i++ {
			switch {
			case i < n:
				bar.WriteString(barStyle.Render("█"))
			case i == marker:
				bar.WriteString(dimStyle.Render("┊"))
			default:
				bar.WriteByte(' ')
			}
		}
		return fmt.Sprintf("  %s %s %s %s\n",
			mutedStyle.Render(fmt.Sprintf("day %3d", day)),
			bar.String(),
			valueStyle.Render(fmt.Sprintf("%6.2f", kwh)),
			dimStyle.Render(tag))
	}

	var b strings.Builder
	for _, s := range history {
		b.WriteString(row(s.Day, s.KWh, ColorBlue, "recorded"))
	}
	for _, p := range forecast {
		b.WriteString(row(p.Day, p.KWh, ColorOrange, "forecast"))
	}
	if marker >= 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  ┊ appliances: %s/day", FormatKWh(currentKWh))) + "\n")
	}
	return b.String()
}
