// Package tui is a terminal chat form for the relay.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"agent-relay/internal/agent"
)

const (
	defaultWidth = 80
	placeholder  = "Ask something... (Enter to send, Alt+Enter for newline, Esc to exit)"
)

type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

// replyMsg carries the outcome of one submission.
type replyMsg struct {
	text string
	err  error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("236"))
	disabledStyle = buttonStyle.Foreground(lipgloss.Color("243"))
	responseStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Model is the bubbletea model of the chat form. One submission may be in
// flight at a time.
type Model struct {
	ctx      context.Context
	asker    Asker
	input    textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	markdown bool

	width    int
	sending  bool
	response string
	failed   bool
}

type Option func(*Model)

// WithPlainText disables markdown rendering of replies.
func WithPlainText() Option {
	return func(m *Model) {
		m.markdown = false
	}
}

func New(ctx context.Context, asker Asker, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 4096
	ta.SetWidth(defaultWidth)
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		asker:    asker,
		input:    ta,
		spinner:  sp,
		markdown: true,
		width:    defaultWidth,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.markdown {
		m.renderer = newRenderer(m.width)
	}
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// CanSend reports whether a submission is allowed right now.
func (m Model) CanSend() bool {
	return !m.sending && strings.TrimSpace(m.input.Value()) != ""
}

func (m Model) Sending() bool    { return m.sending }
func (m Model) Response() string { return m.response }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if msg.Alt || msg.Paste {
				break
			}
			if !m.CanSend() {
				return m, nil
			}
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(msg.Width-2, 20))
		if m.markdown {
			m.renderer = newRenderer(max(msg.Width, 24))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		m.sending = false
		if msg.err != nil {
			m.response = agent.FormatError(msg.err)
			m.failed = true
		} else {
			m.response = msg.text
			m.failed = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	message := m.input.Value()
	m.sending = true
	m.response = ""
	m.failed = false
	return m, tea.Batch(m.spinner.Tick, askCmd(m.ctx, m.asker, message))
}

func askCmd(ctx context.Context, asker Asker, message string) tea.Cmd {
	return func() tea.Msg {
		text, err := asker.Ask(ctx, message)
		return replyMsg{text: text, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("n8n Agent"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Type a question and get a response from your n8n workflow."))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.button())
	b.WriteString("\n")

	if m.response != "" {
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("Response"))
		b.WriteString("\n")
		b.WriteString(m.renderResponse())
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) button() string {
	switch {
	case m.sending:
		return disabledStyle.Render(m.spinner.View() + " Sending")
	case m.CanSend():
		return buttonStyle.Render("Send")
	default:
		return disabledStyle.Render("Send")
	}
}

func (m Model) renderResponse() string {
	if m.failed {
		return errorStyle.Render(m.response)
	}
	if m.renderer != nil {
		if out, err := m.renderer.Render(m.response); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return responseStyle.Width(max(m.width-2, 20)).Render(m.response)
}
