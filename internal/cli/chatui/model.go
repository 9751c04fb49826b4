// Package chatui holds the interactive terminal panels for the FAQ assistant
// and for direct message threads.
package chatui

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hongminglow/wayfarer/internal/chat"
	"github.com/hongminglow/wayfarer/internal/cli"
)

type replyMsg struct {
	exchange chat.Exchange
}

// Model is the bubbletea model for the assistant panel.
type Model struct {
	ctx     context.Context
	bot     *chat.Bot
	styles  cli.Styles
	input   textinput.Model
	spin    spinner.Model
	lines   []string
	waiting bool
}

// New builds the panel around bot.
func New(ctx context.Context, bot *chat.Bot, styles cli.Styles) Model {
	input := textinput.New()
	input.Placeholder = "Ask about places, transport, money..."
	input.Prompt = "You> "
	input.Width = 60
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Accent

	return Model{ctx: ctx, bot: bot, styles: styles, input: input, spin: spin}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			switch strings.ToLower(text) {
			case "exit", "quit":
				return m, tea.Quit
			}
			m.lines = append(m.lines, m.styles.Label.Bold(true).Render("You:")+" "+text)
			m.input.SetValue("")
			m.waiting = true
			return m, tea.Batch(m.spin.Tick, m.ask(text))
		}

	case replyMsg:
		m.waiting = false
		style := m.styles.Accent
		if msg.exchange.Fallback {
			style = m.styles.Error
		}
		m.lines = append(m.lines, style.Render("Assistant:")+" "+msg.exchange.Bot)
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(text string) tea.Cmd {
	return func() tea.Msg {
		exchange, _ := m.bot.Ask(m.ctx, text)
		return replyMsg{exchange: exchange}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Travel assistant"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Type a question and press enter. esc to leave."))
	b.WriteString("\n\n")
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.waiting {
		b.WriteString(m.spin.View() + " " + m.styles.Muted.Render("thinking"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

// Run shows the panel until the user leaves.
func Run(ctx context.Context, bot *chat.Bot, styles cli.Styles, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(New(ctx, bot, styles),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := program.Run()
	return err
}
