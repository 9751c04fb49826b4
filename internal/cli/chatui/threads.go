package chatui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hongminglow/wayfarer/internal/chat"
	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/session"
	"github.com/hongminglow/wayfarer/internal/view"
)

// ModeSwitcher changes the acting mode of the current session.
type ModeSwitcher func(ctx context.Context, mode models.Role) error

// refreshMsg follows any controller call; the view re-reads the snapshot.
type refreshMsg struct{}

type sessionMsg struct{}

type sentMsg struct {
	err error
}

type modeMsg struct {
	err error
}

// ThreadsModel is the bubbletea model for direct messages. Rendering always
// reads the controller snapshot.
type ThreadsModel struct {
	ctx        context.Context
	threads    *chat.Threads
	switchMode ModeSwitcher
	styles     cli.Styles
	changes    <-chan struct{}

	input   textinput.Model
	spin    spinner.Model
	cursor  int
	sending bool
	notice  string
}

// NewThreads builds the panel around threads and starts following the
// session, so a login, logout or mode switch remounts the list.
func NewThreads(ctx context.Context, threads *chat.Threads, switchMode ModeSwitcher, styles cli.Styles) ThreadsModel {
	input := textinput.New()
	input.Placeholder = "Write a message, or /start <username>"
	input.Prompt = "> "
	input.Width = 60
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.Accent

	return ThreadsModel{
		ctx:        ctx,
		threads:    threads,
		switchMode: switchMode,
		styles:     styles,
		changes:    threads.FollowSession(ctx),
		input:      input,
		spin:       spin,
	}
}

func (m ThreadsModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.do(func(ctx context.Context) { m.threads.Mount(ctx) }), m.awaitSession())
}

// do runs fn off the update loop and asks for a redraw when it returns.
func (m ThreadsModel) do(fn func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return refreshMsg{}
	}
}

func (m ThreadsModel) awaitSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return sessionMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m ThreadsModel) send() tea.Cmd {
	return func() tea.Msg {
		_, err := m.threads.Send(m.ctx)
		return sentMsg{err: err}
	}
}

func (m ThreadsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.cursor = max(m.cursor-1, 0)
			return m, nil
		case tea.KeyDown:
			m.cursor = min(m.cursor+1, max(len(m.threadList())-1, 0))
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		}

	case refreshMsg:
		m.clampCursor()
		return m, nil

	case sessionMsg:
		m.clampCursor()
		return m, m.awaitSession()

	case sentMsg:
		m.sending = false
		if msg.err == nil {
			m.input.SetValue("")
		}
		return m, nil

	case modeMsg:
		if errors.Is(msg.err, session.ErrModeNotAllowed) {
			m.notice = "Only merchants can switch to traveler mode."
			return m, nil
		}
		m.notice = view.Describe(msg.err, "Could not switch mode.")
		return m, nil

	case spinner.TickMsg:
		if !m.sending {
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

func (m ThreadsModel) submit() (tea.Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	m.notice = ""
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		list := m.threadList()
		if len(list) == 0 {
			return m, nil
		}
		id := list[m.cursor].ID
		return m, m.do(func(ctx context.Context) { m.threads.Select(ctx, id) })
	}
	if strings.HasPrefix(text, "/") {
		return m.command(text)
	}
	m.threads.SetDraft(text)
	m.sending = true
	return m, tea.Batch(m.spin.Tick, m.send())
}

func (m ThreadsModel) command(text string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "quit", "exit":
		return m, tea.Quit
	case "start":
		if arg == "" {
			m.notice = "Usage: /start <username>"
			return m, nil
		}
		m.input.SetValue("")
		return m, m.do(func(ctx context.Context) { m.threads.StartWith(ctx, arg) })
	case "mode":
		mode, ok := models.ParseRole(arg)
		if !ok || m.switchMode == nil {
			m.notice = "Usage: /mode <traveler|merchant>"
			return m, nil
		}
		m.input.SetValue("")
		return m, func() tea.Msg {
			return modeMsg{err: m.switchMode(m.ctx, mode)}
		}
	}
	m.notice = fmt.Sprintf("Unknown command /%s.", name)
	return m, nil
}

func (m ThreadsModel) threadList() []models.Thread {
	return m.threads.Snapshot().Threads.Data
}

func (m *ThreadsModel) clampCursor() {
	m.cursor = min(m.cursor, max(len(m.threadList())-1, 0))
}

func (m ThreadsModel) View() string {
	snapshot := m.threads.Snapshot()
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Messages"))
	if snapshot.Account != "" {
		b.WriteString(" " + m.styles.Muted.Render("as "+snapshot.Account))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("up/down choose, enter opens, /mode traveler, esc to leave."))
	b.WriteString("\n\n")

	switch {
	case snapshot.Threads.Loading && len(snapshot.Threads.Data) == 0:
		b.WriteString(m.styles.Muted.Render("Loading conversations..."))
		b.WriteString("\n")
	case len(snapshot.Threads.Data) == 0:
		b.WriteString(m.styles.Muted.Render("No conversations yet."))
		b.WriteString("\n")
	}
	for i, thread := range snapshot.Threads.Data {
		marker := "  "
		if i == m.cursor {
			marker = m.styles.Accent.Render("> ")
		}
		title := strings.Join(thread.Participants, ", ")
		if thread.ID == snapshot.Selected {
			title = m.styles.Title.Render(title)
		}
		line := fmt.Sprintf("%s%s %s", marker, m.styles.Muted.Render(fmt.Sprintf("#%d", thread.ID)), title)
		if thread.LastMessage != "" {
			line += m.styles.Muted.Render(": " + thread.LastMessage)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch snapshot.State {
	case chat.LoadingMessages:
		b.WriteString(m.styles.Muted.Render("Loading messages..."))
		b.WriteString("\n")
	case chat.Ready:
		if len(snapshot.Messages) == 0 {
			b.WriteString(m.styles.Muted.Render("No messages yet."))
			b.WriteString("\n")
		}
		for _, message := range snapshot.Messages {
			style := m.styles.Label
			if message.Sender == snapshot.Account {
				style = m.styles.Accent
			}
			b.WriteString(style.Render(message.Sender+":") + " " + message.Text)
			b.WriteString("\n")
		}
	default:
		b.WriteString(m.styles.Muted.Render(chat.NoThread.String()))
		b.WriteString("\n")
	}

	if problem := firstNonEmpty(m.notice, snapshot.ActionError); problem != "" {
		b.WriteString(m.styles.Error.Render(problem))
		b.WriteString("\n")
	}
	if m.sending {
		b.WriteString(m.spin.View() + " " + m.styles.Muted.Render("sending"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// RunThreads shows the direct message panel until the user leaves.
func RunThreads(ctx context.Context, threads *chat.Threads, switchMode ModeSwitcher, styles cli.Styles, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	program := tea.NewProgram(NewThreads(ctx, threads, switchMode, styles),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := program.Run()
	return err
}
