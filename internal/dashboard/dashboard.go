// Package dashboard is the live terminal view for `pagegen watch --ui`.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wilbur182/pagegen/internal/pages"
	"github.com/wilbur182/pagegen/internal/render"
	"github.com/wilbur182/pagegen/internal/styles"
	"github.com/wilbur182/pagegen/internal/ui"
)

// historySize is how many cycle results the dashboard keeps.
const historySize = 8

const tickInterval = 80 * time.Millisecond

// CycleMsg carries a finished cycle into the model.
type CycleMsg pages.CycleResult

// tickMsg drives the pending spinner.
type tickMsg time.Time

type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "regenerate"),
	),
}

// Options wires the model to a running pages plugin.
type Options struct {
	Pattern string // watched glob, for the header
	Output  string // manifest path
	Results <-chan pages.CycleResult
	State   func() pages.State
	// Refresh queues a manual cycle; the result arrives on Results.
	Refresh func()
}

// Model is the bubbletea model for the watch dashboard.
type Model struct {
	opts     Options
	history  []pages.CycleResult
	pages    []string
	spinner  ui.BrailleSpinner
	width    int
	quitting bool
}

// New creates a dashboard model.
func New(opts Options) Model {
	return Model{opts: opts, spinner: ui.NewBrailleSpinner()}
}

// waitForCycle blocks on the results channel and returns the next cycle.
func waitForCycle(ch <-chan pages.CycleResult) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return CycleMsg(res)
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts listening for cycles.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForCycle(m.opts.Results), tick())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if m.opts.Refresh != nil {
				m.opts.Refresh()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case CycleMsg:
		res := pages.CycleResult(msg)
		m.history = append([]pages.CycleResult{res}, m.history...)
		if len(m.history) > historySize {
			m.history = m.history[:historySize]
		}
		if res.Err == nil {
			m.pages = res.Paths
		}
		return m, waitForCycle(m.opts.Results)

	case tickMsg:
		m.spinner.SetActive(m.state() == pages.Pending)
		m.spinner.Tick()
		return m, tick()
	}
	return m, nil
}

func (m Model) state() pages.State {
	if m.opts.State == nil {
		return pages.Idle
	}
	return m.opts.State()
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("pagegen"))
	sb.WriteString(" ")
	sb.WriteString(styles.Muted.Render("watching " + m.opts.Pattern))
	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render("manifest " + m.opts.Output))
	sb.WriteString("\n\n")

	status := styles.Muted.Render("idle")
	if m.spinner.IsActive() {
		status = m.spinner.View("regeneration pending")
	}
	sb.WriteString(status)
	sb.WriteString("\n\n")

	panel := styles.Panel
	if m.width > 4 {
		panel = panel.Width(m.width - 2)
	}
	header := styles.Title.Render(fmt.Sprintf("Pages (%d)", len(m.pages)))
	sb.WriteString(panel.Render(lipgloss.JoinVertical(lipgloss.Left, header, render.PageList(m.pages))))
	sb.WriteString("\n\n")

	for _, res := range m.history {
		sb.WriteString(render.Cycle(res))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styles.KeyHint.Render(keys.Refresh.Help().Key + " " + keys.Refresh.Help().Desc))
	sb.WriteString(styles.KeyHint.Render(keys.Quit.Help().Key + " " + keys.Quit.Help().Desc))
	return sb.String()
}
