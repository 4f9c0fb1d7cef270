// ABOUTME: One question and its answer, from request to transcript update
// ABOUTME: Applies the answer only if the conversation is still the one it was asked in

package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

// Exchange is a question awaiting its answer. Create with BeginQuestion.
type Exchange struct {
	c              *Controller
	token          string
	question       string
	useRAG         bool
	conversationID string
	epoch          uint64
	index          int
}

// Question returns the text being asked
func (e *Exchange) Question() string {
	return e.question
}

// Send asks the backend and applies the outcome. Loading is cleared in
// every case.
func (e *Exchange) Send(ctx context.Context) error {
	c := e.c

	resp, err := c.api.Ask(ctx, e.token, client.AskRequest{
		Question:       e.question,
		UseRAG:         e.useRAG,
		ConversationID: e.conversationID,
	})

	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			c.mu.Lock()
			c.markLocked(e, StatusFailed)
			c.finishLocked(e)
			c.mu.Unlock()
			c.identity.HandleUnauthorized(e.token)
			return ErrSessionExpired
		}

		c.logger.Warn("ask failed", "conversation_id", e.conversationID, "error", err)
		c.mu.Lock()
		if c.markLocked(e, StatusFailed) {
			c.transcript = append(c.transcript, Message{
				Sender:         SenderBot,
				Text:           MsgSomethingWentWrong,
				ConversationID: e.conversationID,
				Status:         StatusConfirmed,
			})
		}
		c.finishLocked(e)
		c.mu.Unlock()
		return fmt.Errorf("ask failed: %w", err)
	}

	c.mu.Lock()
	if c.markLocked(e, StatusConfirmed) {
		c.transcript = append(c.transcript, Message{
			Sender:         SenderBot,
			Text:           resp.Answer,
			ConversationID: resp.ConversationID,
			Status:         StatusConfirmed,
		})
		if resp.ConversationID != "" {
			c.activeID = resp.ConversationID
		}
	} else {
		c.logger.Debug("discarding stale answer", "conversation_id", resp.ConversationID)
	}
	c.finishLocked(e)
	c.mu.Unlock()

	if err := c.dir.Refresh(ctx); errors.Is(err, ErrSessionExpired) {
		return err
	}
	return nil
}

// markLocked sets the status of e's user message and reports whether it is
// still in the transcript. History loaded after e began shifts the message,
// which loadTranscript records in e.index.
func (c *Controller) markLocked(e *Exchange, status Status) bool {
	if c.epoch != e.epoch || e.index < 0 || e.index >= len(c.transcript) {
		return false
	}
	m := &c.transcript[e.index]
	if m.Sender != SenderUser || m.Text != e.question {
		return false
	}
	m.Status = status
	return true
}

// finishLocked clears loading if e is still the exchange in flight
func (c *Controller) finishLocked(e *Exchange) {
	if c.inflight == e {
		c.inflight = nil
	}
}
