// Package tui is the terminal front end of the feedback assistant.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quickcommerce/insights/internal/models"
)

// DefaultAskTimeout bounds a single question, retrieval plus generation.
const DefaultAskTimeout = 90 * time.Second

// Asker is the TUI-facing subset of the assistant service.
type Asker interface {
	Ask(ctx context.Context, question string, topK int) (models.Answer, error)
}

type answerMsg struct{ answer models.Answer }

type askFailedMsg struct{ err error }

// Model is the Bubble Tea model for the assistant.
type Model struct {
	asker    Asker
	topK     int
	timeout  time.Duration
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	answer   *models.Answer
	status   string
	failed   bool
	busy     bool
	ready    bool
	summary  string
}

// New creates the model. summary is shown under the title (e.g. how many feedback entries are indexed).
func New(asker Asker, topK int, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about customer feedback and press Enter"
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		asker:    asker,
		topK:     topK,
		timeout:  DefaultAskTimeout,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		summary:  summary,
		status:   "Ready. Example: Why are customers unhappy?",
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		answer, err := m.asker.Ask(ctx, question, m.topK)
		if err != nil {
			return askFailedMsg{err: err}
		}

		return answerMsg{answer: answer}
	}
}

// Update handles input, window and result messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true

		_, bh := answerBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // title+summary, status, input box, spacer

		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.viewport.SetContent(m.renderAnswer())

		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.busy {
				return m, nil
			}

			m.busy = true
			m.failed = false
			m.status = fmt.Sprintf("Analyzing customer feedback for %q...", question)

			return m, tea.Batch(m.ask(question), m.spinner.Tick)
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)

			return m, cmd
		}

	case answerMsg:
		m.busy = false
		m.answer = &msg.answer
		m.status = fmt.Sprintf("Answered using %d feedback entries.", len(msg.answer.Feedback))
		m.input.Reset()
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()

		return m, nil

	case askFailedMsg:
		m.busy = false
		m.failed = true
		m.answer = nil
		m.status = "Failed to generate an answer: " + msg.err.Error()
		m.viewport.SetContent(m.renderAnswer())

		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := statusStyle.Render(m.status)
	if m.failed {
		status = errorStyle.Render(m.status)
	} else if m.busy {
		status = m.spinner.View() + " " + status
	}

	return titleStyle.Render("Customer Feedback Assistant") + "\n" +
		summaryStyle.Render(m.summary) + "\n" +
		answerBoxStyle.Render(m.viewport.View()) + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}

	var b strings.Builder

	b.WriteString(headingStyle.Render("Answer"))
	b.WriteString("\n")
	b.WriteString(wrap(m.answer.Text, m.viewport.Width))
	b.WriteString("\n\n")
	b.WriteString(headingStyle.Render("Feedback used"))
	b.WriteString("\n")

	for i, f := range m.answer.Feedback {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, f.Text, scoreStyle.Render(fmt.Sprintf("(%.3f)", f.Score)))
	}

	return b.String()
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	return lipgloss.NewStyle().Width(width).Render(text)
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
