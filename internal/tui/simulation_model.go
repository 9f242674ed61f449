package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/co2-offset-dashboard/internal/common"
	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
)

const (
	simulationDefaultWidth = 80
	barPadding             = 36
	maxBarWidth            = 60
)

// simulationTickMsg asks the model to advance the schedule by one tick.
type simulationTickMsg struct{}

// SimulationModel animates one compensation schedule in the terminal: an
// elapsed-time counter plus one progress bar per available method.
type SimulationModel struct {
	schedule *compensation.Schedule
	rates    offset.Rates
	bars     map[offset.Method]progress.Model
	current  compensation.Progress
	width    int
}

// NewSimulationModel creates the model for a freshly built schedule.
func NewSimulationModel(s *compensation.Schedule, rates offset.Rates) *SimulationModel {
	m := &SimulationModel{
		schedule: s,
		rates:    rates,
		bars:     make(map[offset.Method]progress.Model),
		current:  s.Snapshot(),
		width:    simulationDefaultWidth,
	}
	for _, d := range s.Durations {
		if d.Available {
			m.bars[d.Method] = progress.New(progress.WithDefaultGradient())
		}
	}
	m.resize(m.width)
	return m
}

// Progress returns the last progress shown.
func (m *SimulationModel) Progress() compensation.Progress {
	return m.current
}

// Init implements tea.Model.
func (m *SimulationModel) Init() tea.Cmd {
	return m.nextTick()
}

func (m *SimulationModel) nextTick() tea.Cmd {
	return tea.Tick(m.schedule.TickInterval, func(time.Time) tea.Msg {
		return simulationTickMsg{}
	})
}

// Update implements tea.Model.
func (m *SimulationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.schedule.Cancel()
			m.current = m.schedule.Snapshot()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
	case simulationTickMsg:
		m.current = m.schedule.Advance()
		if m.current.Done {
			return m, tea.Quit
		}
		return m, m.nextTick()
	}
	return m, nil
}

func (m *SimulationModel) resize(width int) {
	m.width = width
	w := width - barPadding
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < 10 {
		w = 10
	}
	for k, bar := range m.bars {
		bar.Width = w
		m.bars[k] = bar
	}
}

// View implements tea.Model.
func (m *SimulationModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Compensating %s", common.FormatKg(m.schedule.EmissionKg))))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Time elapsed"))
	b.WriteString(valueStyle.Render(m.current.Elapsed))
	b.WriteString("\n\n")

	for _, d := range m.schedule.Durations {
		label := labelStyle.Render(d.Method.Label())
		if !d.Available {
			b.WriteString(label)
			b.WriteString(mutedStyle.Render("not available: " + d.Reason))
			b.WriteString("\n")
			continue
		}
		pct := m.current.Percent[d.Method]
		b.WriteString(label)
		b.WriteString(m.bars[d.Method].ViewAs(float64(pct) / 100))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %.5f kg/day, %s", m.rates[d.Method], compensation.FormatDays(d.Days))))
		b.WriteString("\n")
	}

	switch m.current.State {
	case compensation.StateCompleted:
		b.WriteString(doneStyle.Render("\nEmission fully compensated."))
	case compensation.StateCancelled:
		b.WriteString(cancelStyle.Render("\nSimulation cancelled."))
	default:
		b.WriteString(helpStyle.Render("q: cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// RunSimulation drives the schedule in an interactive terminal program and
// returns the final progress.
func RunSimulation(s *compensation.Schedule, rates offset.Rates, opts ...tea.ProgramOption) (compensation.Progress, error) {
	final, err := tea.NewProgram(NewSimulationModel(s, rates), opts...).Run()
	if err != nil {
		s.Cancel()
		return s.Snapshot(), err
	}
	if m, ok := final.(*SimulationModel); ok {
		return m.Progress(), nil
	}
	return s.Snapshot(), nil
}
