// ABOUTME: Conversation list shown beside the chat
// ABOUTME: First row starts a new chat; remaining rows are past conversations

package sidebar

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/icons"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui/styles"
)

// rowHeight is the number of lines per conversation row
const rowHeight = 2

// SelectedMsg is sent when a row is chosen. An empty ID means a new chat.
type SelectedMsg struct {
	ID string
}

// Sidebar lists conversations with a cursor
type Sidebar struct {
	items    []client.ConversationSummary
	cursor   int
	offset   int
	activeID string
	width    int
	height   int
}

// New creates an empty sidebar
func New() *Sidebar {
	return &Sidebar{}
}

// SetItems replaces the listed conversations, keeping the cursor in range
func (s *Sidebar) SetItems(items []client.ConversationSummary) {
	s.items = items
	if s.cursor > len(items) {
		s.cursor = len(items)
	}
	s.scroll()
}

// SetActive marks the conversation currently shown in the chat
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// SetSize sets the inner width and height
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.scroll()
}

// Cursor returns the highlighted row; 0 is the new chat row
func (s *Sidebar) Cursor() int {
	return s.cursor
}

// Update handles navigation keys
func (s *Sidebar) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.items) {
			s.cursor++
		}
	case "home", "g":
		s.cursor = 0
	case "end", "G":
		s.cursor = len(s.items)
	case "enter":
		id := ""
		if s.cursor > 0 {
			id = s.items[s.cursor-1].ConversationID
		}
		return func() tea.Msg { return SelectedMsg{ID: id} }
	}
	s.scroll()
	return nil
}

// visibleRows is how many conversation rows fit under the new chat row
func (s *Sidebar) visibleRows() int {
	if s.height <= 0 {
		return len(s.items)
	}
	n := (s.height - 2) / rowHeight
	if n < 1 {
		n = 1
	}
	return n
}

func (s *Sidebar) scroll() {
	rows := s.visibleRows()
	idx := s.cursor - 1
	if idx < s.offset {
		s.offset = idx
	}
	if idx >= s.offset+rows {
		s.offset = idx - rows + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
	if last := len(s.items) - rows; s.offset > last && last >= 0 {
		s.offset = last
	}
}

// View renders the list
func (s *Sidebar) View() string {
	var sb strings.Builder

	newChat := icons.NewChat.String() + " New chat"
	sb.WriteString(s.renderRow(0, newChat, "", s.activeID == ""))
	sb.WriteString("\n")

	if len(s.items) == 0 {
		sb.WriteString(styles.SidebarMeta.Render("No conversations yet"))
		return sb.String()
	}

	end := s.offset + s.visibleRows()
	if end > len(s.items) {
		end = len(s.items)
	}
	for i := s.offset; i < end; i++ {
		item := s.items[i]
		sb.WriteString("\n")
		sb.WriteString(s.renderRow(i+1, item.PreviewLine(), item.DateLabel(), item.ConversationID == s.activeID))
	}

	return sb.String()
}

func (s *Sidebar) renderRow(row int, text, meta string, active bool) string {
	width := s.width - 2
	if width < 10 {
		width = 10
	}

	marker := "  "
	style := styles.SidebarItem
	if active {
		style = styles.SidebarActive
	}
	if row == s.cursor {
		marker = styles.SidebarCursor.Render("> ")
		if !active {
			style = styles.SidebarCursor
		}
	}

	line := marker + style.Render(truncate(text, width))
	if meta != "" {
		line += "\n  " + styles.SidebarMeta.Render(truncate(meta, width))
	}
	return line
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
