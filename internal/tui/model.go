// Package tui is the terminal front end: type a question, pick a
// jurisdiction with tab, read the answer and its references.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Asker is the TUI-facing subset of the retrieval service.
type Asker interface {
	HandleQuery(ctx context.Context, query, jurisdiction string) domain.Outcome
	Jurisdictions() []string
}

// answerMsg carries a finished run back to Update.
type answerMsg struct {
	id  int
	out domain.Outcome
}

// Model is the Bubble Tea model for the terminal client.
type Model struct {
	asker         Asker
	jurisdictions []string
	selected      int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	runID   int
	busy    bool
	cancel  context.CancelFunc
	outcome *domain.Outcome
	status  string
	ready   bool
}

// New creates a model. It starts with the first jurisdiction selected.
func New(asker Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Enter your legal question and press Enter"
	ti.Focus()
	ti.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		asker:         asker,
		jurisdictions: asker.Jurisdictions(),
		input:         ti,
		viewport:      viewport.New(80, 10),
		spinner:       sp,
		status:        "tab: jurisdiction  enter: ask  esc: cancel  ctrl+c: quit",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Jurisdiction returns the selected jurisdiction name.
func (m Model) Jurisdiction() string {
	if len(m.jurisdictions) == 0 {
		return ""
	}
	return m.jurisdictions[m.selected]
}

// Update handles key, window and run completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := boxStyle.GetFrameSize()
		reserved := 3 + 2*bh + 1 // header, jurisdictions, status + two boxes + input line
		m.viewport.Width = max(20, msg.Width-boxStyle.GetHorizontalFrameSize())
		m.viewport.Height = max(3, msg.Height-reserved)
		m.viewport.SetContent(m.renderOutcome())
		return m, nil

	case answerMsg:
		if msg.id != m.runID {
			return m, nil
		}
		m.finish()
		out := msg.out
		m.outcome = &out
		if out.OK() {
			m.status = fmt.Sprintf("Answered with %d references.", len(out.Matches))
		} else {
			m.status = "Failed: " + string(out.Kind())
		}
		m.viewport.SetContent(m.renderOutcome())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "tab":
			if !m.busy && len(m.jurisdictions) > 0 {
				m.selected = (m.selected + 1) % len(m.jurisdictions)
			}
			return m, nil
		case "shift+tab":
			if !m.busy && len(m.jurisdictions) > 0 {
				m.selected = (m.selected - 1 + len(m.jurisdictions)) % len(m.jurisdictions)
			}
			return m, nil
		case "esc":
			if m.busy && m.cancel != nil {
				m.cancel()
				m.status = "Cancelling..."
			}
			return m, nil
		case "enter":
			return m.submit()
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		m.status = "Please enter a question."
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.runID++
	m.busy = true
	m.cancel = cancel
	m.status = "Asking about " + m.Jurisdiction() + "..."
	return m, tea.Batch(ask(ctx, m.asker, m.runID, q, m.Jurisdiction()), m.spinner.Tick)
}

func (m *Model) finish() {
	m.busy = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func ask(ctx context.Context, asker Asker, id int, query, jurisdiction string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{id: id, out: asker.HandleQuery(ctx, query, jurisdiction)}
	}
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("LexAI")
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" +
		m.renderJurisdictions() + "\n" +
		boxStyle.Render(m.viewport.View()) + "\n" +
		boxStyle.Render(m.input.View()) + "\n" +
		status
}

func (m Model) renderJurisdictions() string {
	parts := make([]string, len(m.jurisdictions))
	for i, j := range m.jurisdictions {
		if i == m.selected {
			parts[i] = selectedStyle.Render("[" + j + "]")
		} else {
			parts[i] = dimStyle.Render(" " + j + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderOutcome() string {
	if m.outcome == nil {
		return dimStyle.Render("Response will appear here.")
	}
	width := m.viewport.Width
	out := m.outcome
	if !out.OK() {
		return errorStyle.Width(width).Render("Error: " + out.Failure.Message)
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Width(width).Render(out.Response))
	if len(out.Matches) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(titleStyle.Render("References"))
		for _, mt := range out.Matches {
			title := mt.Record.Title
			if mt.Record.Subtitle != "" {
				title += " · " + mt.Record.Subtitle
			}
			fmt.Fprintf(&sb, "\n[%d] %s\n    %s", mt.Rank, title, dimStyle.Render(mt.Record.URL))
		}
	}
	return sb.String()
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)
