package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/diogo/cookieschat/internal/chat"
	"github.com/diogo/cookieschat/internal/markup"
	"github.com/diogo/cookieschat/internal/models"
	"github.com/diogo/cookieschat/internal/render"
)

// ChatSession is the part of chat.Session the TUI drives
type ChatSession interface {
	Start(ctx context.Context, text string) (<-chan struct{}, error)
	SetDraft(text string)
	Snapshot() chat.Event
	Subscribe() (<-chan chat.Event, func())
}

// Message types for the TUI
type (
	// sessionMsg carries a session snapshot
	sessionMsg chat.Event
	// sessionClosedMsg is sent when the subscription ends
	sessionClosedMsg struct{}
	// copiedMsg reports the result of a clipboard write
	copiedMsg struct {
		err error
	}
)

// Model represents the TUI state
type Model struct {
	session     ChatSession
	events      <-chan chat.Event
	unsubscribe func()
	modelName   string
	renderOpts  render.Options
	copy        func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	state     chat.Event
	ready     bool
	notice    string
	noticeErr bool

	// Dimensions
	width  int
	height int
}

// Option configures the chat model
type Option func(*Model)

// WithRenderOptions sets how model replies are rendered
func WithRenderOptions(opts render.Options) Option {
	return func(m *Model) {
		m.renderOpts = opts
	}
}

// WithClipboard replaces the clipboard writer used by ctrl+y
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copy = write
	}
}

// NewChatModel creates a chat model following session
func NewChatModel(session ChatSession, modelName string, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "Pregunta por nuestras galletas..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	theme := render.GetTUITheme()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(theme.Text)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.TextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	events, unsubscribe := session.Subscribe()

	m := Model{
		session:     session,
		events:      events,
		unsubscribe: unsubscribe,
		modelName:   modelName,
		renderOpts:  render.DefaultOptions().WithStyle(theme.MarkdownStyle),
		copy:        clipboard.WriteAll,
		textarea:    ta,
		spinner:     s,
		state:       session.Snapshot(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForEvent(m.events),
	)
}

// waitForEvent turns the next session snapshot into a tea message
func waitForEvent(events <-chan chat.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionMsg(ev)
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 5
		statusHeight := 2
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+y":
			return m, m.copyLastReply()

		case "enter":
			if m.state.Busy {
				return m, nil
			}
			input := m.textarea.Value()
			switch strings.TrimSpace(input) {
			case "":
				return m, nil
			case "/quit", "/exit":
				return m, tea.Quit
			}

			m.notice = ""
			if _, err := m.session.Start(context.Background(), input); err != nil {
				if !errors.Is(err, chat.ErrBusy) && !errors.Is(err, chat.ErrEmptyMessage) {
					log.Error().Err(err).Msg("submit failed")
				}
				return m, nil
			}
			m.textarea.Reset()
			return m, m.spinner.Tick
		}

	case sessionMsg:
		wasBusy := m.state.Busy
		m.state = chat.Event(msg)
		if m.ready {
			m.updateViewport()
			m.viewport.GotoBottom()
		}
		cmds = append(cmds, waitForEvent(m.events))
		if m.state.Busy && !wasBusy {
			cmds = append(cmds, m.spinner.Tick)
		}

	case sessionClosedMsg:
		return m, tea.Quit

	case copiedMsg:
		m.noticeErr = msg.err != nil
		if msg.err != nil {
			m.notice = "clipboard unavailable: " + msg.err.Error()
		} else {
			m.notice = "reply copied to clipboard"
		}

	case spinner.TickMsg:
		if m.state.Busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only pass keys to the textarea while input is enabled
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.state.Busy {
		before := m.textarea.Value()
		m.textarea, cmd = m.textarea.Update(keyMsg)
		cmds = append(cmds, cmd)
		if after := m.textarea.Value(); after != before {
			m.session.SetDraft(after)
		}
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// copyLastReply writes the last model message to the clipboard as markdown
func (m Model) copyLastReply() tea.Cmd {
	text := lastModelText(m.state.Messages)
	if text == "" {
		return nil
	}
	write := m.copy
	return func() tea.Msg {
		return copiedMsg{err: write(markup.ToMarkdown(text))}
	}
}

// lastModelText returns the newest model message, or ""
func lastModelText(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleModel {
			return messages[i].Text
		}
	}
	return ""
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("🍪 Cookies Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	messagesContent := m.viewport.View()
	if len(m.state.Messages) == 0 {
		messagesContent = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	var inputContent string
	if m.state.Busy {
		inputContent = m.spinner.View() + loadingStyle.Render(" Gemini está escribiendo...")
	} else {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("Tú"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("🍪"),
		"",
		welcomeTitleStyle.Width(width).Render("Bienvenido a Cookies Chat"),
		"",
		welcomeStyle.Width(width).Render("Escribe un mensaje para empezar"),
	)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the shortcuts and the last notice
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy reply"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		bar = lipgloss.JoinVertical(lipgloss.Left, bar, style.Render(m.notice))
	}
	return bar
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	opts := m.renderOpts.WithWidth(bubbleWidth - 4)

	for i, msg := range m.state.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			content.WriteString(userLabelStyle.Render("● Tú") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		} else {
			content.WriteString(modelLabelStyle.Render("🍪 Gemini") + "\n")
			content.WriteString(modelBubbleStyle.Width(bubbleWidth).Render(render.ReplyOrPlain(msg.Text, opts)))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// Run starts the chat TUI and blocks until the user quits
func Run(session ChatSession, modelName string, opts ...Option) error {
	m := NewChatModel(session, modelName, opts...)
	defer m.unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
