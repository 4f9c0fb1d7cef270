// ABOUTME: Scrollable chat transcript with markdown rendering for bot replies
// ABOUTME: Wraps a bubbles viewport and renders answers through glamour

package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/icons"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/styles"
)

// EmptyText is shown before the first message of a conversation
const EmptyText = "Ask your question to get started."

// MarkdownFunc renders markdown for the given width
type MarkdownFunc func(text string) string

// Transcript displays the messages of the active conversation
type Transcript struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	width    int

	messages []conversation.Message
	loading  bool
	spinner  string
}

// New creates an empty transcript
func New() *Transcript {
	vp := viewport.New(0, 0)
	// Only paging keys scroll; everything else belongs to the input line.
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}
	return &Transcript{viewport: vp}
}

// SetSize resizes the viewport and rebuilds the markdown renderer on width change
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	if width != t.width {
		t.width = width
		t.renderer = newRenderer(width)
	}
	t.refresh(true)
}

func newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}

// SetMessages replaces the displayed messages. spinner is the current
// spinner frame shown while loading.
func (t *Transcript) SetMessages(msgs []conversation.Message, loading bool, spinner string) {
	changed := len(msgs) != len(t.messages) || loading != t.loading
	for i := 0; !changed && i < len(msgs); i++ {
		changed = msgs[i] != t.messages[i]
	}
	t.messages = msgs
	t.loading = loading
	t.spinner = spinner
	t.refresh(changed)
}

func (t *Transcript) refresh(follow bool) {
	atBottom := t.viewport.AtBottom()
	t.viewport.SetContent(Render(t.messages, t.loading, t.spinner, t.width, t.markdown))
	if follow || atBottom {
		t.viewport.GotoBottom()
	}
}

func (t *Transcript) markdown(text string) string {
	if t.renderer == nil {
		return wrap(text, t.width)
	}
	out, err := t.renderer.Render(text)
	if err != nil {
		return wrap(text, t.width)
	}
	return strings.Trim(out, "\n")
}

// Update handles scrolling
func (t *Transcript) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

// View renders the viewport
func (t *Transcript) View() string {
	return t.viewport.View()
}

// Render lays out messages top to bottom. Bot text goes through md.
func Render(msgs []conversation.Message, loading bool, spinner string, width int, md MarkdownFunc) string {
	if len(msgs) == 0 && !loading {
		return styles.Subtitle.Render(EmptyText)
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, m := range msgs {
		blocks = append(blocks, renderMessage(m, width, md))
	}
	if loading {
		blocks = append(blocks, styles.PendingText.Render(strings.TrimSpace(spinner+" Loading...")))
	}
	return strings.Join(blocks, "\n\n")
}

func renderMessage(m conversation.Message, width int, md MarkdownFunc) string {
	if m.Sender == conversation.SenderBot {
		label := styles.BotLabel.Render(icons.Bot.String() + " Assistant")
		return label + "\n" + md(m.Text)
	}

	label := styles.UserLabel.Render(icons.User.String() + " You")
	body := styles.UserText.Render(wrap(m.Text, width))
	switch m.Status {
	case conversation.StatusPending:
		label += " " + styles.PendingText.Render("sending")
	case conversation.StatusFailed:
		label += " " + styles.FailedText.Render(icons.Critical.String()+" not delivered")
	}
	return label + "\n" + body
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
