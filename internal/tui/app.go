// ABOUTME: Root bubbletea model for the chat TUI
// ABOUTME: Routes between sign-in and chat screens based on session events

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
	"github.com/Ahmed9588406/customer-support-bot/internal/session"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/authform"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/icons"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/sidebar"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/styles"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/transcript"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenChat
)

// Layout constants
const (
	minTerminalWidth = 80 // below this the sidebar replaces the chat when focused
	sidebarWidth     = 32
	frameLines       = 2 // header + footer
	panelChrome      = 2 // top and bottom border
	inputLines       = 2 // divider + input line
	eventBuffer      = 16
)

type focus int

const (
	focusInput focus = iota
	focusSidebar
)

// sessionEventMsg delivers a session transition into the update loop
type sessionEventMsg struct {
	event session.Event
}

type loginDoneMsg struct {
	err error
}

type registerDoneMsg struct {
	err error
}

// loadedMsg is sent when the initial directory/transcript fetch completes
type loadedMsg struct {
	err error
}

type askDoneMsg struct {
	err error
}

type selectDoneMsg struct {
	id  string
	err error
}

// App is the root model for the TUI
type App struct {
	sessions *session.Manager
	ctrl     *conversation.Controller
	events   chan session.Event
	logger   *slog.Logger

	screen Screen
	focus  focus
	width  int
	height int

	// Child models
	form       *authform.Form
	sidebar    *sidebar.Sidebar
	transcript *transcript.Transcript
	input      textinput.Model
	spinner    spinner.Model
}

// screenFor is the routing guard: chat requires a session, and a
// session always lands on chat.
func screenFor(authenticated bool, requested Screen) Screen {
	if authenticated {
		return ScreenChat
	}
	if requested == ScreenRegister {
		return ScreenRegister
	}
	return ScreenLogin
}

// New creates the TUI and subscribes it to session events
func New(sessions *session.Manager, ctrl *conversation.Controller) *App {
	ti := textinput.New()
	ti.Placeholder = "Ask your question here..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	a := &App{
		sessions:   sessions,
		ctrl:       ctrl,
		events:     make(chan session.Event, eventBuffer),
		logger:     slog.Default(),
		form:       authform.New(authform.ModeLogin),
		sidebar:    sidebar.New(),
		transcript: transcript.New(),
		input:      ti,
		spinner:    sp,
	}

	sessions.Subscribe(func(ev session.Event) {
		select {
		case a.events <- ev:
		default:
			// the guard re-reads the manager on the next event
			a.logger.Warn("dropping session event", "type", ev.Type.String())
		}
	})

	_, authenticated := sessions.Current()
	a.screen = screenFor(authenticated, ScreenLogin)
	if a.screen == ScreenChat {
		a.input.Focus()
	}
	return a
}

// waitForSessionEvent blocks until the manager emits an event
func (a *App) waitForSessionEvent() tea.Cmd {
	return func() tea.Msg {
		return sessionEventMsg{event: <-a.events}
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForSessionEvent()}
	if a.screen == ScreenChat {
		cmds = append(cmds, a.load())
	} else {
		cmds = append(cmds, a.form.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.screen {
		case ScreenLogin, ScreenRegister:
			return a.updateForm(msg)
		case ScreenChat:
			return a.updateChat(msg)
		}

	case sessionEventMsg:
		cmd := a.handleSessionEvent(msg.event)
		return a, tea.Batch(cmd, a.waitForSessionEvent())

	case authform.SubmittedMsg:
		return a, a.submitCredentials(msg)

	case authform.SwitchModeMsg:
		return a, a.showForm(msg.Mode, "")

	case loginDoneMsg:
		if msg.err != nil {
			return a, a.form.SetError(userMessage(msg.err))
		}
		return a, nil

	case registerDoneMsg:
		if msg.err != nil {
			return a, a.form.SetError(userMessage(msg.err))
		}
		return a, a.showForm(authform.ModeLogin, session.MsgRegistered)

	case loadedMsg, askDoneMsg:
		a.syncView()
		return a, nil

	case selectDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, conversation.ErrSessionExpired) {
			a.logger.Debug("conversation not loaded", "conversation_id", msg.id, "error", msg.err)
		}
		a.syncView()
		return a, nil

	case sidebar.SelectedMsg:
		return a, a.selectConversation(msg.ID)

	case spinner.TickMsg:
		if !a.ctrl.Snapshot().Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.syncView()
		return a, cmd

	default:
		// huh forms need their internal messages
		if a.screen != ScreenChat {
			return a.updateForm(msg)
		}
	}

	return a, nil
}

// handleSessionEvent applies the routing guard after a session transition
func (a *App) handleSessionEvent(ev session.Event) tea.Cmd {
	_, authenticated := a.sessions.Current()
	a.logger.Debug("tui session event", "type", ev.Type.String(), "reason", string(ev.Reason))

	switch ev.Type {
	case session.EventAuthenticated:
		if !authenticated {
			return nil
		}
		// another process may have signed in as someone else
		if ev.Reason == session.ReasonExternal {
			a.ctrl.Reset()
		}
		if a.screen != ScreenChat || ev.Reason == session.ReasonExternal {
			a.enterChat()
			return a.load()
		}
	case session.EventUnauthenticated:
		a.ctrl.Reset()
		a.syncView()
		if a.screen == ScreenChat {
			return a.showForm(authform.ModeLogin, "")
		}
	case session.EventLoginRequired:
		if a.screen == ScreenChat && !authenticated {
			return a.showForm(authform.ModeLogin, "")
		}
	}
	return nil
}

func (a *App) enterChat() {
	a.screen = ScreenChat
	a.focus = focusInput
	a.input.Focus()
	a.syncView()
}

func (a *App) showForm(mode authform.Mode, notice string) tea.Cmd {
	requested := ScreenLogin
	if mode == authform.ModeRegister {
		requested = ScreenRegister
	}
	_, authenticated := a.sessions.Current()
	a.screen = screenFor(authenticated, requested)
	if a.screen == ScreenChat {
		a.enterChat()
		return nil
	}

	a.input.Blur()
	a.form = authform.New(mode)
	if notice != "" {
		a.form.SetNotice(notice)
	}
	if a.width > 0 {
		a.form.SetWidth(a.formWidth())
	}
	return a.form.Init()
}

func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.form == nil {
		return a, nil
	}
	model, cmd := a.form.Update(msg)
	a.form = model.(*authform.Form)
	return a, cmd
}

func (a *App) submitCredentials(msg authform.SubmittedMsg) tea.Cmd {
	switch msg.Mode {
	case authform.ModeRegister:
		return func() tea.Msg {
			err := a.sessions.Register(context.Background(), msg.Username, msg.Password)
			return registerDoneMsg{err: err}
		}
	default:
		return func() tea.Msg {
			_, err := a.sessions.Login(context.Background(), msg.Username, msg.Password)
			return loginDoneMsg{err: err}
		}
	}
}

func (a *App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+l":
		return a, a.logout()
	case "ctrl+n":
		a.ctrl.StartNewConversation()
		a.focus = focusInput
		a.input.Focus()
		a.syncView()
		return a, nil
	case "ctrl+r":
		a.ctrl.ToggleRAG()
		return a, nil
	case "tab":
		if a.focus == focusInput {
			a.focus = focusSidebar
			a.input.Blur()
		} else {
			a.focus = focusInput
			a.input.Focus()
		}
		a.layout()
		return a, nil
	case "pgup", "pgdown":
		return a, a.transcript.Update(msg)
	}

	if a.focus == focusSidebar {
		if msg.String() == "esc" {
			a.focus = focusInput
			a.input.Focus()
			a.layout()
			return a, nil
		}
		return a, a.sidebar.Update(msg)
	}

	if msg.String() == "enter" {
		return a, a.submitQuestion()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.ctrl.SetInput(a.input.Value())
	return a, cmd
}

// submitQuestion appends the user message right away and sends it in the
// background. Blank input and a pending answer are ignored.
func (a *App) submitQuestion() tea.Cmd {
	ex, err := a.ctrl.BeginQuestion(a.input.Value())
	if err != nil {
		if !errors.Is(err, conversation.ErrEmptyInput) && !errors.Is(err, conversation.ErrBusy) {
			a.logger.Debug("question not sent", "error", err)
		}
		return nil
	}
	a.syncView()

	send := func() tea.Msg {
		return askDoneMsg{err: ex.Send(context.Background())}
	}
	return tea.Batch(send, a.spinner.Tick)
}

func (a *App) selectConversation(id string) tea.Cmd {
	a.focus = focusInput
	a.input.Focus()
	a.layout()

	if id == "" {
		a.ctrl.StartNewConversation()
		a.syncView()
		return nil
	}
	return func() tea.Msg {
		return selectDoneMsg{id: id, err: a.ctrl.SelectConversation(context.Background(), id)}
	}
}

func (a *App) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: a.ctrl.Load(context.Background())}
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		a.sessions.Logout()
		return nil
	}
}

// syncView copies controller state into the child models
func (a *App) syncView() {
	st := a.ctrl.Snapshot()
	a.transcript.SetMessages(st.Transcript, st.Loading, a.spinner.View())
	a.sidebar.SetItems(a.ctrl.Directory().Items())
	a.sidebar.SetActive(st.ActiveID)
	if a.input.Value() != st.Input {
		a.input.SetValue(st.Input)
	}
}

// userMessage extracts the text meant for the form from an auth error
func userMessage(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var regErr *session.RegistrationError
	if errors.As(err, &regErr) {
		return regErr.Message
	}
	return err.Error()
}

// layout resizes child models to the terminal
func (a *App) layout() {
	if a.width == 0 || a.height == 0 {
		return
	}
	a.form.SetWidth(a.formWidth())

	body := a.bodyHeight()
	a.sidebar.SetSize(sidebarWidth-2, body)

	chatInner := a.chatWidth() - 2
	a.input.Width = chatInner - lipgloss.Width(a.input.Prompt) - 1
	a.transcript.SetSize(chatInner, body-inputLines)
}

// bodyHeight is the inner height of the chat panels
func (a *App) bodyHeight() int {
	h := a.height - frameLines - panelChrome
	if h < 4 {
		h = 4
	}
	return h
}

// chatWidth is the chat panel width excluding its border
func (a *App) chatWidth() int {
	if a.width < minTerminalWidth {
		return a.width - panelChrome
	}
	return a.width - sidebarWidth - 2*panelChrome
}

func (a *App) formWidth() int {
	w := a.width - 4
	if w > 60 {
		w = 60
	}
	return w
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenChat:
		content = a.viewChat()
	default:
		content = a.viewForm()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewForm() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(a.form.View())
}

func (a *App) viewChat() string {
	body := a.bodyHeight()

	sidebarStyle := styles.Panel
	chatStyle := styles.ActivePanel
	if a.focus == focusSidebar {
		sidebarStyle, chatStyle = styles.ActivePanel, styles.Panel
	}

	left := sidebarStyle.Width(sidebarWidth).Height(body).Render(a.sidebar.View())

	divider := lipgloss.NewStyle().Foreground(styles.Muted).
		Render(strings.Repeat("─", max(a.chatWidth()-2, 1)))
	chat := a.transcript.View() + "\n" + divider + "\n" + a.input.View()
	right := chatStyle.Width(a.chatWidth()).Height(body).Render(chat)

	if a.width > 0 && a.width < minTerminalWidth {
		if a.focus == focusSidebar {
			return sidebarStyle.Width(a.chatWidth()).Height(body).Render(a.sidebar.View())
		}
		return right
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	// Guard against zero/small width before WindowSizeMsg is received
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Support Bot"))

	rightText := ""
	if a.screen == ScreenChat {
		rag := "RAG off"
		if a.ctrl.UseRAG() {
			rag = "RAG on"
		}
		ctx := rag
		if sess, ok := a.sessions.Current(); ok && sess.Username != "" {
			ctx = icons.User.String() + " " + sess.Username + " · " + rag
		}
		rightText = " " + contextStyle.Render(ctx) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) +
		rightText + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Enter Submit", "^T Register", "^C Quit"}
	case ScreenRegister:
		shortcuts = []string{"Enter Submit", "^T Sign-in", "^C Quit"}
	case ScreenChat:
		if a.focus == focusSidebar {
			shortcuts = []string{"↑↓ Navigate", "Enter Open", "Tab Chat", "^N New", "^L Logout", "^C Quit"}
		} else {
			shortcuts = []string{"Enter Send", "Tab Sidebar", "^N New", "^R RAG", "^L Logout", "^C Quit"}
		}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}

	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if a.screen == ScreenChat && a.ctrl.Snapshot().Loading {
		rightText = " " + statusStyle.Render(a.spinner.View()+" Waiting for answer") + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) +
		rightText + borderStyle.Render("─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(sessions *session.Manager, ctrl *conversation.Controller) error {
	app := New(sessions, ctrl)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
