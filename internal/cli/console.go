package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- message types ---

// ConsoleDelivery is a bridged message arriving on the err side. Send it to
// the console program with Program.Send.
type ConsoleDelivery struct {
	ChatID  string
	Content string
}

type submitResultMsg struct {
	err error
}

// --- console config ---

// ConsoleConfig holds the starting identity and the submit hook.
type ConsoleConfig struct {
	Person   string
	Room     string
	Identity string // the bridge's own identity on the err side
	Submit   func(ctx context.Context, post ConsolePost) error
}

// --- console entry ---

type entryKind int

const (
	entryPost entryKind = iota
	entryDelivery
	entryNote
	entryError
)

type consoleEntry struct {
	kind    entryKind
	label   string
	content string
}

// --- console model ---

type consoleModel struct {
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	history []consoleEntry
	pending int

	state    consoleState
	identity string
	submit   func(ctx context.Context, post ConsolePost) error
	ctx      context.Context

	ready  bool
	width  int
	height int
}

func newConsoleModel(ctx context.Context, cfg ConsoleConfig) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message or /help"
	ti.Focus()
	ti.CharLimit = 0
	ti.Prompt = "❯ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(Accent)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Accent)

	return consoleModel{
		input:    ti,
		spinner:  sp,
		state:    consoleState{person: cfg.Person, room: cfg.Room},
		identity: cfg.Identity,
		submit:   cfg.Submit,
		ctx:      ctx,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// header(1) + divider(1) + viewport + divider(1) + input(1) + status(1)
		vpHeight := msg.Height - 5
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleLine(m.input.Value())
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case ConsoleDelivery:
		m.history = append(m.history, consoleEntry{
			kind:    entryDelivery,
			label:   m.identity + " → " + msg.ChatID,
			content: msg.Content,
		})
		m.refresh()
		return m, nil

	case submitResultMsg:
		m.pending--
		if msg.err != nil {
			m.history = append(m.history, consoleEntry{kind: entryError, content: msg.err.Error()})
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m consoleModel) handleLine(line string) (tea.Model, tea.Cmd) {
	in := ParseInput(line)
	if in.Kind == InputNone {
		return m, nil
	}
	m.input.SetValue("")

	note, post, quit := m.state.apply(in)
	if quit {
		return m, tea.Quit
	}
	switch {
	case post != nil:
		m.history = append(m.history, consoleEntry{kind: entryPost, label: m.state.where(), content: post.Text})
		m.pending++
		m.refresh()
		return m, m.submitPost(*post)
	case in.Kind == InputInvalid:
		m.history = append(m.history, consoleEntry{kind: entryError, content: note})
	default:
		m.history = append(m.history, consoleEntry{kind: entryNote, content: note})
	}
	m.refresh()
	return m, nil
}

func (m consoleModel) submitPost(post ConsolePost) tea.Cmd {
	return func() tea.Msg {
		if m.submit == nil {
			return submitResultMsg{err: fmt.Errorf("console is not connected to the bridge")}
		}
		return submitResultMsg{err: m.submit(m.ctx, post)}
	}
}

func (m *consoleModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m consoleModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := TitleStyle.Render(fmt.Sprintf(" %s discordbridge", Logo)) + DimStyle.Render("  err console")
	divider := DimStyle.Render(strings.Repeat("─", m.width))

	inputLine := " " + m.input.View()
	if m.pending > 0 {
		inputLine = fmt.Sprintf(" %s %s", m.spinner.View(), m.input.View())
	}

	return header + "\n" +
		divider + "\n" +
		m.viewport.View() + "\n" +
		divider + "\n" +
		inputLine + "\n" +
		m.renderStatusBar()
}

func (m consoleModel) renderHistory() string {
	if len(m.history) == 0 {
		return m.renderWelcome()
	}

	var sb strings.Builder
	for _, entry := range m.history {
		sb.WriteString("\n")
		switch entry.kind {
		case entryPost:
			sb.WriteString("  " + UserLabel.Render(entry.label) + "\n")
			writeIndented(&sb, entry.content)
		case entryDelivery:
			sb.WriteString("  " + BotLabel.Render(entry.label) + "\n")
			writeIndented(&sb, entry.content)
		case entryNote:
			for _, line := range strings.Split(entry.content, "\n") {
				sb.WriteString("  " + DimStyle.Render(line) + "\n")
			}
		case entryError:
			sb.WriteString("  " + ErrStyle.Render("Error: "+entry.content) + "\n")
		}
	}
	return sb.String()
}

func writeIndented(sb *strings.Builder, content string) {
	for _, line := range strings.Split(content, "\n") {
		sb.WriteString("  " + line + "\n")
	}
}

func (m consoleModel) renderWelcome() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("  " + BoldStyle.Render("You are on the err side of the bridge.") + "\n")
	sb.WriteString(DimStyle.Render("  Messages you type are routed like any chat message.") + "\n")
	sb.WriteString(DimStyle.Render("  Bridged messages for the err side show up here.") + "\n\n")
	for _, line := range strings.Split(helpText, "\n") {
		sb.WriteString(DimStyle.Render("  "+line) + "\n")
	}
	return sb.String()
}

func (m consoleModel) renderStatusBar() string {
	left := DimStyle.Render(" " + m.state.where())
	right := DimStyle.Render(m.identity + " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// NewConsoleProgram builds the full screen console. The program stops when
// ctx is cancelled.
func NewConsoleProgram(ctx context.Context, cfg ConsoleConfig) *tea.Program {
	return tea.NewProgram(newConsoleModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
}
