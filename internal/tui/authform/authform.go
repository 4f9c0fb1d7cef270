// ABOUTME: Sign-in and registration form as a bubbletea model
// ABOUTME: Wraps a huh form and reports submitted credentials to the parent

package authform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ahmed9588406/customer-support-bot/internal/tui/icons"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/styles"
)

// Mode selects which form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeRegister:
		return "register"
	default:
		return "unknown"
	}
}

// SubmittedMsg carries the credentials entered by the user
type SubmittedMsg struct {
	Mode     Mode
	Username string
	Password string
}

// SwitchModeMsg asks the parent to show the other form
type SwitchModeMsg struct {
	Mode Mode
}

// Form is the credential entry screen
type Form struct {
	mode     Mode
	form     *huh.Form
	username string
	password string
	err      string
	notice   string
	busy     bool
	width    int
}

// New creates a form in the given mode
func New(mode Mode) *Form {
	f := &Form{mode: mode}
	f.form = f.build()
	return f
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func (f *Form) build() *huh.Form {
	title := "Sign in"
	desc := "Log in to continue your conversations"
	if f.mode == ModeRegister {
		title = "Create account"
		desc = "Pick a username and password"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(64).
				Value(&f.username).
				Validate(required("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&f.password).
				Validate(required("Password")),
		).Title(title).
			Description(desc),
	).WithTheme(styles.FormTheme()).
		WithShowHelp(false)
}

// reset rebuilds the huh form, keeping the username
func (f *Form) reset() tea.Cmd {
	f.password = ""
	f.form = f.build()
	if f.width > 0 {
		f.form = f.form.WithWidth(f.width)
	}
	return f.form.Init()
}

// Mode returns the current mode
func (f *Form) Mode() Mode {
	return f.mode
}

// Busy reports whether a submission is awaiting its result
func (f *Form) Busy() bool {
	return f.busy
}

// Username returns the username as typed
func (f *Form) Username() string {
	return f.username
}

// SetError shows msg under the form and lets the user try again
func (f *Form) SetError(msg string) tea.Cmd {
	f.busy = false
	f.err = msg
	f.notice = ""
	return f.reset()
}

// SetNotice shows an informational line above the form
func (f *Form) SetNotice(msg string) {
	f.notice = msg
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) {
	f.width = width
	f.form = f.form.WithWidth(width)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if f.busy {
			return f, nil
		}
		if key.String() == "ctrl+t" {
			next := ModeRegister
			if f.mode == ModeRegister {
				next = ModeLogin
			}
			return f, func() tea.Msg { return SwitchModeMsg{Mode: next} }
		}
		f.err = ""
	}

	model, cmd := f.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		f.form = form
	}

	switch f.form.State {
	case huh.StateCompleted:
		f.busy = true
		sub := SubmittedMsg{Mode: f.mode, Username: strings.TrimSpace(f.username), Password: f.password}
		return f, func() tea.Msg { return sub }
	case huh.StateAborted:
		return f, f.reset()
	}

	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	if f.notice != "" {
		sb.WriteString(styles.StatusOK.Render(icons.CheckOK.String() + " " + f.notice))
		sb.WriteString("\n\n")
	}

	sb.WriteString(f.form.View())

	if f.busy {
		sb.WriteString("\n")
		sb.WriteString(styles.PendingText.Render(icons.Pending.String() + " Please wait..."))
	}
	if f.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.err))
	}

	other := "ctrl+t create an account"
	if f.mode == ModeRegister {
		other = "ctrl+t back to sign in"
	}
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).MarginTop(1).Render(other))

	return sb.String()
}
