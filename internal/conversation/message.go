// ABOUTME: Chat message types and conversation errors
// ABOUTME: Transcript entries carry a status so optimistic sends can be tracked

package conversation

import (
	"errors"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

// MsgSomethingWentWrong is shown as the bot reply when an ask fails
const MsgSomethingWentWrong = "Something went wrong. Please try again."

var (
	// ErrEmptyInput rejects blank questions before any request is made
	ErrEmptyInput = errors.New("question is empty")
	// ErrBusy rejects a question while another is awaiting its answer
	ErrBusy = errors.New("a question is already in progress")
	// ErrSessionExpired means the backend rejected the token; the session
	// has already been ended
	ErrSessionExpired = errors.New("session expired")
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Message is one transcript entry
type Message struct {
	Sender         Sender
	Text           string
	ConversationID string
	Status         Status
}

func fromHistory(entries []client.HistoryEntry, conversationID string) []Message {
	msgs := make([]Message, 0, len(entries))
	for _, e := range entries {
		id := e.ConversationID
		if id == "" {
			id = conversationID
		}
		msgs = append(msgs, Message{
			Sender:         Sender(e.Sender),
			Text:           e.Message,
			ConversationID: id,
			Status:         StatusConfirmed,
		})
	}
	return msgs
}
