package tui

import (
	"strings"
	"testing"

	"github.com/theirongolddev/kburn/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	cfg := config.DefaultConfig()
	history, err := cfg.History.Samples()
	require.NoError(t, err)
	return NewApp(cfg, history, false)
}

func press(t *testing.T, a App, keys ...tea.KeyMsg) App {
	t.Helper()
	for _, k := range keys {
		m, _ := a.Update(k)
		var ok bool
		a, ok = m.(App)
		require.True(t, ok)
	}
	return a
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewAppComputesEstimate(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.baseErr)
	assert.InDelta(t, 5.92, a.base.DailyKWh, 1e-9)
	assert.InDelta(t, 50/9.472, a.nowDays, 1e-9)
	assert.InDelta(t, a.nowDays, a.whatIfDays, 1e-9)
	assert.InDelta(t, 50/9.472, a.base.DaysRemaining, 0.01)
}

func TestArrowKeysStepTheCut(t *testing.T) {
	a := newTestApp(t)

	a = press(t, a, tea.KeyMsg{Type: tea.KeyRight}, runes("l"))
	assert.InDelta(t, 0.10, a.whatIf, 1e-12)
	assert.InDelta(t, 50/(5.92*0.9*1.6), a.whatIfDays, 1e-9)

	a = press(t, a, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Zero(t, a.whatIf)

	for range 30 {
		a = press(t, a, tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.InDelta(t, maxWhatIf, a.whatIf, 1e-12)
}

func TestOptimalAndReset(t *testing.T) {
	a := newTestApp(t)

	a = press(t, a, runes("o"))
	assert.InDelta(t, a.base.OptimalReduction, a.whatIf, 1e-12)
	assert.InDelta(t, a.base.ExtendedDays, a.whatIfDays, 0.01)

	a = press(t, a, runes("+"))
	assert.InDelta(t, 1.7, a.cfg.Tariff.CostPerKWh, 1e-12)

	a = press(t, a, runes("r"))
	assert.Zero(t, a.whatIf)
	assert.InDelta(t, 1.6, a.cfg.Tariff.CostPerKWh, 1e-12)
}

func TestRateNeverDropsToZero(t *testing.T) {
	a := newTestApp(t)
	for range 40 {
		a = press(t, a, runes("-"))
	}
	assert.InDelta(t, 0.1, a.cfg.Tariff.CostPerKWh, 1e-12)
}

func TestEditBalance(t *testing.T) {
	a := newTestApp(t)

	a = press(t, a, runes("b"))
	require.True(t, a.editing)

	a = press(t, a, runes("100"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.editing)
	assert.InDelta(t, 100.0, a.cfg.Tariff.Balance, 1e-12)
	require.NoError(t, a.baseErr)
	assert.InDelta(t, 100/9.472, a.base.DaysRemaining, 0.01)
}

func TestEditBalanceRejectsGarbage(t *testing.T) {
	a := newTestApp(t)

	a = press(t, a, runes("b"), runes("abc"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, a.editing)
	assert.Contains(t, a.inputErr, "not a number")
	assert.InDelta(t, 50.0, a.cfg.Tariff.Balance, 1e-12)

	a = press(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.editing)
	assert.Empty(t, a.inputErr)
}

func TestQuit(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHorizonErrorIsShown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tariff.Balance = 100000
	history, err := cfg.History.Samples()
	require.NoError(t, err)

	a := NewApp(cfg, history, false)
	require.Error(t, a.baseErr)
	assert.Greater(t, a.nowDays, cfg.Search.MaxDays)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.(App).View()
	assert.Contains(t, view, "horizon")
	assert.Contains(t, view, "n/a")
}

func TestView(t *testing.T) {
	a := newTestApp(t)
	assert.Empty(t, a.View())

	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.(App).View()
	assert.Contains(t, view, "Days left")
	assert.Contains(t, view, "GHS 50.00")
	assert.Contains(t, view, "Current usage")

	m, _ = m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Contains(t, m.(App).View(), "too narrow")
}

func TestFirstRunShowsSetupForm(t *testing.T) {
	cfg := config.DefaultConfig()
	a := NewApp(cfg, nil, true)
	require.NotNil(t, a.setupForm)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.NotContains(t, m.(App).View(), "Days left")
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := NewSetupValues(cfg)
	assert.Equal(t, "50", vals.Balance)
	assert.Equal(t, "1.6", vals.Rate)

	vals.Balance = " 75.5 "
	vals.Rate = "2"
	vals.Currency = "usd"
	vals.Theme = "terminal"
	require.NoError(t, vals.Apply(&cfg))
	assert.InDelta(t, 75.5, cfg.Tariff.Balance, 1e-12)
	assert.InDelta(t, 2.0, cfg.Tariff.CostPerKWh, 1e-12)
	assert.Equal(t, "USD", cfg.Tariff.Currency)
	assert.Equal(t, "terminal", cfg.Appearance.Theme)

	vals.Rate = "0"
	err := vals.Apply(&cfg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "cost per kWh"))

	vals.Rate = "1"
	vals.Balance = "NaN"
	require.Error(t, vals.Apply(&cfg))
}
