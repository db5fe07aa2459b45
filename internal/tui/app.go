// Package tui provides the interactive what-if dashboard for kburn.
package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/kburn/internal/cli"
	"github.com/theirongolddev/kburn/internal/config"
	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/pipeline"
	"github.com/theirongolddev/kburn/internal/tui/components"
	"github.com/theirongolddev/kburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const (
	reductionStep = 0.05
	maxWhatIf     = 0.95
	rateStep      = 0.1

	minTerminalWidth = 60
	maxContentWidth  = 120
	chartHeight      = 6
)

type keyMap struct {
	Less     key.Binding
	More     key.Binding
	Optimal  key.Binding
	Reset    key.Binding
	Balance  key.Binding
	RateUp   key.Binding
	RateDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Less, k.More, k.Optimal, k.Balance, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Less, k.More, k.Optimal, k.Reset},
		{k.Balance, k.RateUp, k.RateDown},
		{k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Less:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "cut less")),
	More:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "cut more")),
	Optimal:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "optimal cut")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Balance:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "edit balance")),
	RateUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "raise rate")),
	RateDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "lower rate")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

// App is the root Bubble Tea model.
type App struct {
	cfg     config.Config
	tariff  config.TariffConfig // as loaded, restored by reset
	history []model.UsageSample

	base    model.Estimate
	baseErr error

	// What-if state: the usage cut being explored and the days it buys.
	nowDays    float64
	whatIf     float64
	whatIfDays float64
	whatIfErr  error

	balanceIn textinput.Model
	editing   bool
	inputErr  string

	keys keyMap
	help help.Model

	width  int
	height int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	saveErr   error
}

// NewApp creates the dashboard. firstRun shows the setup form before the
// dashboard.
func NewApp(cfg config.Config, history []model.UsageSample, firstRun bool) App {
	ti := textinput.New()
	ti.Placeholder = "new balance"
	ti.CharLimit = 12
	ti.Width = 16

	a := App{
		cfg:       cfg,
		tariff:    cfg.Tariff,
		history:   history,
		balanceIn: ti,
		keys:      defaultKeys,
		help:      help.New(),
	}
	if firstRun {
		a.setupVals = NewSetupValues(cfg)
		a.setupForm = NewSetupForm(a.setupVals)
	}
	a.recompute()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupForm != nil {
		return a.setupForm.Init()
	}
	return nil
}

// recompute reruns the estimator for the current tariff, then the what-if.
func (a *App) recompute() {
	a.base, a.baseErr = pipeline.Estimate(a.cfg.Input(a.history))
	a.updateWhatIf()
}

// updateWhatIf evaluates the days a balance lasts with usage cut by whatIf.
func (a *App) updateWhatIf() {
	a.nowDays, a.whatIfDays, a.whatIfErr = 0, 0, nil

	daily, err := pipeline.DailyKWh(a.cfg.Specs())
	if err != nil {
		a.whatIfErr = err
		return
	}
	objective, err := pipeline.ReductionObjective(daily, a.cfg.Tariff.Balance, a.cfg.Tariff.CostPerKWh)
	if err != nil {
		a.whatIfErr = err
		return
	}
	a.nowDays = -objective(0)
	a.whatIfDays = -objective(a.whatIf)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.editing {
			return a.updateBalanceInput(msg)
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Help):
			a.help.ShowAll = !a.help.ShowAll
		case key.Matches(msg, a.keys.More):
			a.whatIf = min(round2(a.whatIf+reductionStep), maxWhatIf)
			a.updateWhatIf()
		case key.Matches(msg, a.keys.Less):
			a.whatIf = max(round2(a.whatIf-reductionStep), 0)
			a.updateWhatIf()
		case key.Matches(msg, a.keys.Optimal):
			if a.baseErr == nil {
				a.whatIf = a.base.OptimalReduction
				a.updateWhatIf()
			}
		case key.Matches(msg, a.keys.Reset):
			a.whatIf = 0
			a.cfg.Tariff = a.tariff
			a.recompute()
		case key.Matches(msg, a.keys.RateUp):
			a.cfg.Tariff.CostPerKWh = round2(a.cfg.Tariff.CostPerKWh + rateStep)
			a.recompute()
		case key.Matches(msg, a.keys.RateDown):
			if next := round2(a.cfg.Tariff.CostPerKWh - rateStep); next > 0 {
				a.cfg.Tariff.CostPerKWh = next
				a.recompute()
			}
		case key.Matches(msg, a.keys.Balance):
			a.editing = true
			a.inputErr = ""
			a.balanceIn.SetValue("")
			return a, a.balanceIn.Focus()
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.editing {
		var cmd tea.Cmd
		a.balanceIn, cmd = a.balanceIn.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateBalanceInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v, err := parseAmount(a.balanceIn.Value(), false)
		if err != nil {
			a.inputErr = err.Error()
			return a, nil
		}
		a.cfg.Tariff.Balance = v
		a.editing = false
		a.inputErr = ""
		a.balanceIn.Blur()
		a.recompute()
		return a, nil
	case tea.KeyEsc:
		a.editing = false
		a.inputErr = ""
		a.balanceIn.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.balanceIn, cmd = a.balanceIn.Update(msg)
	return a, cmd
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.saveErr = a.setupVals.Apply(&a.cfg)
		if a.saveErr == nil {
			a.saveErr = config.Save(a.cfg)
		}
		theme.SetActive(a.cfg.Appearance.Theme)
		a.tariff = a.cfg.Tariff
		a.setupForm = nil
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  kburn needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	return a.viewMain()
}

func (a App) viewMain() string {
	t := theme.Active
	w := min(a.width, maxContentWidth)
	cur := a.cfg.Tariff.Currency

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ kburn"))
	b.WriteString(mutedStyle.Render(" · prepaid electricity what-if"))
	b.WriteString("\n\n")

	daysLeft := "n/a"
	if a.baseErr == nil {
		daysLeft = cli.FormatDays(a.base.DaysRemaining)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Balance", Value: cli.FormatMoney(a.cfg.Tariff.Balance, cur)},
		{Label: "Tariff", Value: cli.FormatMoney(a.cfg.Tariff.CostPerKWh, cur) + "/kWh"},
		{Label: "Daily usage", Value: cli.FormatKWh(a.base.DailyKWh), Note: cli.FormatMoney(a.base.DailyCost, cur) + "/day"},
		{Label: "Days left", Value: daysLeft},
	}, w))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Balance life", a.lifeBars(w), w, a.whatIf > 0))
	b.WriteString("\n")

	if chart := a.forecastChart(w); chart != "" {
		b.WriteString(components.ContentCard("Usage (blue recorded, orange forecast)", chart, w, false))
		b.WriteString("\n")
	}

	if a.editing {
		b.WriteString("  Balance: " + a.balanceIn.View())
		if a.inputErr != "" {
			b.WriteString("  " + warnStyle.Render(a.inputErr))
		}
		b.WriteString("\n")
	}
	if a.baseErr != nil {
		b.WriteString(warnStyle.Render("  " + a.baseErr.Error()))
		b.WriteString("\n")
	}
	if a.saveErr != nil {
		b.WriteString(warnStyle.Render("  Could not save config: " + a.saveErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(components.RenderStatusBar(w, " "+a.help.View(a.keys), config.Path()+" "))
	return b.String()
}

func (a App) lifeBars(w int) string {
	inner := components.CardInnerWidth(w)
	horizon := a.cfg.Search.MaxDays
	const labelW = 14
	barW := inner - labelW - 10

	if a.whatIfErr != nil {
		return a.whatIfErr.Error()
	}

	lines := []string{components.LifeBar("Current usage", a.nowDays, horizon, labelW, barW)}
	if a.whatIf > 0 {
		label := "Cut " + cli.FormatPercent(a.whatIf)
		lines = append(lines, components.LifeBar(label, a.whatIfDays, horizon, labelW, barW))
	}
	if a.baseErr == nil {
		label := "Best " + cli.FormatPercent(a.base.OptimalReduction)
		lines = append(lines, components.LifeBar(label, a.base.ExtendedDays, horizon, labelW, barW))
	}
	return strings.Join(lines, "\n")
}

func (a App) forecastChart(w int) string {
	cols := make([]components.Column, 0, len(a.history)+len(a.base.Forecast))
	for _, s := range a.history {
		cols = append(cols, components.Column{Label: strconv.Itoa(s.Day), Value: s.KWh})
	}
	if a.baseErr == nil {
		for _, p := range a.base.Forecast {
			cols = append(cols, components.Column{Label: strconv.Itoa(p.Day), Value: p.KWh, Forecast: true})
		}
	}
	if len(cols) == 0 {
		return ""
	}
	colW := max(3, min(6, components.CardInnerWidth(w)/len(cols)))
	return components.ColumnChart(cols, chartHeight, colW)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
