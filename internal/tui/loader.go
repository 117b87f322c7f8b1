// Package tui renders the load pass as a live terminal view: one line per
// mod, the current phase, and a running error tally. It follows the
// bubbletea Elm loop: events from the host become messages, messages update
// the model, the model renders to a string.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kestrelgames/modkit/internal/host"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	detailStyle = lipgloss.NewStyle().Faint(true)
)

type modStatus int

const (
	statusLoading modStatus = iota
	statusReady
	statusFailed
)

type modLine struct {
	name   string
	status modStatus
	detail string
}

// eventMsg wraps one host event for the Elm loop.
type eventMsg host.Event

// closedMsg signals that the event stream ended.
type closedMsg struct{}

// Model is the loader view's state.
type Model struct {
	spinner spinner.Model
	events  <-chan host.Event
	phase   string
	lines   []modLine
	steps   int
	done    bool
	summary string
}

// New builds a loader view fed by the host's event stream.
func New(events <-chan host.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{spinner: sp, events: events, phase: "starting"}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(events <-chan host.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(e)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	case eventMsg:
		m.apply(host.Event(msg))
		return m, waitForEvent(m.events)
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(e host.Event) {
	switch e.Kind {
	case host.EventPhase:
		m.phase = e.Detail
	case host.EventModReady:
		m.upsert(e.Mod, statusReady, "")
	case host.EventModFailed:
		m.upsert(e.Mod, statusFailed, e.Detail)
	case host.EventStep:
		m.steps++
	case host.EventDone:
		m.done = true
		m.summary = e.Detail
	}
}

func (m *Model) upsert(name string, status modStatus, detail string) {
	for i := range m.lines {
		if m.lines[i].name == name {
			m.lines[i].status = status
			m.lines[i].detail = detail
			return
		}
	}
	m.lines = append(m.lines, modLine{name: name, status: status, detail: detail})
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("modkit") + "\n\n")
	if m.done {
		b.WriteString(okStyle.Render("load complete") + " " + detailStyle.Render(m.summary) + "\n")
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), phaseStyle.Render(m.phase)))
	}
	for _, line := range m.lines {
		switch line.status {
		case statusReady:
			b.WriteString(fmt.Sprintf("  %s %s\n", okStyle.Render("✓"), line.name))
		case statusFailed:
			b.WriteString(fmt.Sprintf("  %s %s %s\n", failStyle.Render("✗"), line.name,
				detailStyle.Render(line.detail)))
		default:
			b.WriteString(fmt.Sprintf("  … %s\n", line.name))
		}
	}
	if m.steps > 0 {
		b.WriteString(detailStyle.Render(fmt.Sprintf("\n%d content items processed\n", m.steps)))
	}
	if m.done {
		b.WriteString(detailStyle.Render("press q to exit\n"))
	}
	return b.String()
}

// Done reports whether the load pass finished (for tests).
func (m Model) Done() bool { return m.done }
