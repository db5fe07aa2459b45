package cli

import (
	"strings"
	"testing"

	"github.com/theirongolddev/kburn/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in), "FormatNumber(%d)", in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "GHS 9.47", FormatMoney(9.472, "GHS"))
	assert.Equal(t, "GHS 1,234.50", FormatMoney(1234.5, "GHS"))
	assert.Equal(t, "-0.25", FormatMoney(-0.25, ""))
	assert.Equal(t, "USD 0.00", FormatMoney(0, "USD"))
}

func TestFormatDaysAndUnits(t *testing.T) {
	assert.Equal(t, "5.3 days", FormatDays(5.2771))
	assert.Equal(t, "1.0 day", FormatDays(1.01))
	assert.Equal(t, "0.0 days", FormatDays(0))
	assert.Equal(t, "5.92 kWh", FormatKWh(5.92))
	assert.Equal(t, "48.6%", FormatPercent(0.48607))
	assert.Equal(t, "24 h", FormatHours(24))
	assert.Equal(t, "0.5 h", FormatHours(0.5))
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Appliances",
		Headers: []string{"Name", "kWh/day"},
		Rows: [][]string{
			{"Fridge", "4.80"},
			{"---"},
			{"Total", "5.92"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, top rule, header, header rule, row, separator, row, bottom rule
	assert.Len(t, lines, 8)
	assert.Contains(t, out, "Fridge")
	assert.Contains(t, out, "Total")

	width := lipgloss.Width(lines[1])
	for _, l := range lines[1:] {
		assert.Equal(t, width, lipgloss.Width(l), "row %q", l)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	assert.Empty(t, RenderTable(Table{}))
}

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil))
	assert.Equal(t, "▁█", RenderSparkline([]float64{0, 4}))
	assert.Equal(t, "▁▁", RenderSparkline([]float64{0, 0}))
	assert.Equal(t, 5, len([]rune(RenderSparkline([]float64{5.8, 6, 6.1, 6.3, 6.4}))))
}

func TestRenderBar(t *testing.T) {
	assert.Empty(t, RenderBar(0, 10, 20, ColorGreen))
	assert.Empty(t, RenderBar(5, 0, 20, ColorGreen))
	assert.Equal(t, 10, lipgloss.Width(RenderBar(5, 10, 20, ColorGreen)))
	assert.Equal(t, 20, lipgloss.Width(RenderBar(50, 10, 20, ColorGreen)))
}

func TestRenderLifeBarClamps(t *testing.T) {
	assert.Contains(t, RenderLifeBar(1.5, 10), "100%")
	assert.Contains(t, RenderLifeBar(-1, 10), "0%")
	assert.Equal(t, 15, lipgloss.Width(RenderLifeBar(0.5, 10)))
}

func TestRenderForecastChart(t *testing.T) {
	history := []model.UsageSample{{Day: 1, KWh: 5.8}, {Day: 2, KWh: 6.0}}
	forecast := []model.ForecastPoint{{Day: 3, KWh: 6.2}}

	out := RenderForecastChart(history, forecast, 5.92)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "recorded")
	assert.Contains(t, lines[2], "forecast")
	assert.Contains(t, lines[2], "6.20")
	assert.Contains(t, lines[3], "5.92 kWh/day")

	assert.Empty(t, RenderForecastChart(nil, nil, 5))
}
