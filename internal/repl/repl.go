// ABOUTME: Line-oriented chat loop for terminals where the full TUI is unwanted
// ABOUTME: Reads questions and slash commands, prompting for sign-in when needed

package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
	"github.com/Ahmed9588406/customer-support-bot/internal/session"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/styles"
)

const helpText = `Commands:
  /new            start a new conversation
  /list           list your conversations
  /open N|ID      open a conversation by list number or id
  /rag [on|off]   show or set retrieval
  /whoami         show the signed-in user
  /logout         sign out
  /help           show this help
  /quit           exit`

// LineReader reads prompted lines. *Liner satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL is a plain-text chat session
type REPL struct {
	in       LineReader
	out      io.Writer
	sessions *session.Manager
	ctrl     *conversation.Controller
	logger   *slog.Logger

	// listed is the directory as last printed by /list, for /open N
	listed []client.ConversationSummary
}

// New creates a REPL reading from in and writing to out
func New(in LineReader, out io.Writer, sessions *session.Manager, ctrl *conversation.Controller) *REPL {
	return &REPL{
		in:       in,
		out:      out,
		sessions: sessions,
		ctrl:     ctrl,
		logger:   slog.Default(),
	}
}

// isExit reports whether err ends the loop (ctrl+c or ctrl+d)
func isExit(err error) bool {
	return errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF)
}

// Run loops until the user quits or input ends
func (r *REPL) Run(ctx context.Context) error {
	if _, ok := r.sessions.CurrentToken(); ok {
		r.greet()
		if err := r.ctrl.Load(ctx); err != nil {
			r.logger.Debug("initial load failed", "error", err)
		}
	}

	for {
		if _, ok := r.sessions.CurrentToken(); !ok {
			if err := r.signIn(ctx); err != nil {
				if isExit(err) {
					fmt.Fprintln(r.out)
					return nil
				}
				return err
			}
			r.greet()
			if err := r.ctrl.Load(ctx); err != nil {
				r.logger.Debug("initial load failed", "error", err)
			}
		}

		line, err := r.in.Prompt(styles.UserLabel.Render("you") + "> ")
		if err != nil {
			if isExit(err) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.in.AppendHistory(line)

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}
		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}

		r.ask(ctx, line)
	}
}

func (r *REPL) greet() {
	sess, _ := r.sessions.Current()
	name := sess.Username
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(r.out, "Hi %s! Ask a question, or /help for commands.\n", name)
}

// signIn prompts for credentials until a login succeeds. Typing /register
// as the username creates an account first.
func (r *REPL) signIn(ctx context.Context) error {
	for {
		fmt.Fprintln(r.out, styles.Subtitle.Render("Sign in (type /register to create an account)"))
		username, err := r.in.Prompt("Username: ")
		if err != nil {
			return err
		}
		username = strings.TrimSpace(username)

		if username == "/register" {
			if err := r.register(ctx); err != nil {
				return err
			}
			continue
		}

		password, err := r.in.PasswordPrompt("Password: ")
		if err != nil {
			return err
		}

		if _, err := r.sessions.Login(ctx, username, password); err != nil {
			var authErr *session.AuthError
			if errors.As(err, &authErr) {
				fmt.Fprintln(r.out, styles.StatusCritical.Render(authErr.Message))
				continue
			}
			return err
		}
		return nil
	}
}

func (r *REPL) register(ctx context.Context) error {
	username, err := r.in.Prompt("New username: ")
	if err != nil {
		return err
	}
	password, err := r.in.PasswordPrompt("New password: ")
	if err != nil {
		return err
	}

	if err := r.sessions.Register(ctx, strings.TrimSpace(username), password); err != nil {
		var regErr *session.RegistrationError
		if errors.As(err, &regErr) {
			fmt.Fprintln(r.out, styles.StatusCritical.Render(regErr.Message))
			return nil
		}
		return err
	}
	fmt.Fprintln(r.out, styles.StatusOK.Render(session.MsgRegistered))
	return nil
}

// ask sends one question and prints the reply. An expired session falls
// through to the sign-in prompt on the next loop.
func (r *REPL) ask(ctx context.Context, question string) {
	err := r.ctrl.SubmitQuestion(ctx, question)
	switch {
	case errors.Is(err, conversation.ErrSessionExpired),
		errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, conversation.ErrEmptyInput):
		return
	case err != nil:
		r.logger.Debug("ask failed", "error", err)
	}

	st := r.ctrl.Snapshot()
	if n := len(st.Transcript); n > 0 && st.Transcript[n-1].Sender == conversation.SenderBot {
		fmt.Fprintf(r.out, "%s %s\n", styles.BotLabel.Render("bot>"), st.Transcript[n-1].Text)
	}
}

// command runs a slash command and reports whether the loop should end
func (r *REPL) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Fprintln(r.out, helpText)

	case "/new":
		r.ctrl.StartNewConversation()
		fmt.Fprintln(r.out, styles.Subtitle.Render("Started a new conversation."))

	case "/list":
		r.list(ctx)

	case "/open":
		if len(args) != 1 {
			fmt.Fprintln(r.out, "usage: /open N|ID")
			return false
		}
		r.open(ctx, args[0])

	case "/rag":
		if len(args) == 1 {
			switch strings.ToLower(args[0]) {
			case "on", "true", "1":
				r.ctrl.SetUseRAG(true)
			case "off", "false", "0":
				r.ctrl.SetUseRAG(false)
			default:
				fmt.Fprintln(r.out, "usage: /rag [on|off]")
				return false
			}
		}
		state := "off"
		if r.ctrl.UseRAG() {
			state = "on"
		}
		fmt.Fprintf(r.out, "Retrieval is %s.\n", state)

	case "/whoami":
		sess, _ := r.sessions.Current()
		fmt.Fprintf(r.out, "Signed in as %s (%s).\n", sess.Username, sess.Role)

	case "/logout":
		r.sessions.Logout()
		r.listed = nil
		fmt.Fprintln(r.out, "Signed out.")

	default:
		fmt.Fprintf(r.out, "Unknown command %s. Type /help for commands.\n", name)
	}
	return false
}

func (r *REPL) list(ctx context.Context) {
	if err := r.ctrl.Directory().Refresh(ctx); err != nil {
		r.logger.Debug("directory refresh failed", "error", err)
	}
	r.listed = r.ctrl.Directory().Items()
	if len(r.listed) == 0 {
		fmt.Fprintln(r.out, "No conversations yet.")
		return
	}

	active := r.ctrl.Snapshot().ActiveID
	for i, item := range r.listed {
		marker := " "
		if item.ConversationID == active {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s%2d. %s %s\n", marker, i+1, item.PreviewLine(), styles.SidebarMeta.Render(item.DateLabel()))
	}
}

func (r *REPL) open(ctx context.Context, arg string) {
	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(r.listed) {
			fmt.Fprintln(r.out, "No such conversation. Use /list first.")
			return
		}
		id = r.listed[n-1].ConversationID
	}

	if err := r.ctrl.SelectConversation(ctx, id); err != nil {
		if !errors.Is(err, conversation.ErrSessionExpired) {
			fmt.Fprintln(r.out, styles.StatusCritical.Render("Could not load that conversation."))
		}
		return
	}

	for _, m := range r.ctrl.Snapshot().Transcript {
		label := styles.UserLabel.Render("you>")
		if m.Sender == conversation.SenderBot {
			label = styles.BotLabel.Render("bot>")
		}
		fmt.Fprintf(r.out, "%s %s\n", label, m.Text)
	}
}
