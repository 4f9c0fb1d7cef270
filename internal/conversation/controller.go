// ABOUTME: Conversation controller owning the active conversation and transcript
// ABOUTME: Responses are tagged with an epoch so late ones never touch a newer transcript

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

// State is a point-in-time copy of the controller for rendering
type State struct {
	ActiveID   string
	Transcript []Message
	Input      string
	Loading    bool
	UseRAG     bool
}

// Controller holds the conversation state. It is safe for concurrent use.
type Controller struct {
	api      API
	identity Identity
	dir      *Directory
	logger   *slog.Logger

	mu         sync.Mutex
	epoch      uint64
	activeID   string
	transcript []Message
	input      string
	inflight   *Exchange
	useRAG     bool
}

// Option configures a Controller
type Option func(*Controller)

// WithRAG sets the initial retrieval flag
func WithRAG(enabled bool) Option {
	return func(c *Controller) { c.useRAG = enabled }
}

// WithLogger sets the controller's logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller with no active conversation.
// Retrieval is on unless WithRAG says otherwise.
func NewController(api API, identity Identity, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		identity: identity,
		logger:   slog.Default(),
		useRAG:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.dir = NewDirectory(api, identity, c.logger)
	return c
}

// Directory returns the conversation list owned by this controller
func (c *Controller) Directory() *Directory {
	return c.dir
}

// clearLocked starts a new epoch with the given active id
func (c *Controller) clearLocked(activeID string) uint64 {
	c.epoch++
	c.activeID = activeID
	c.transcript = nil
	c.input = ""
	return c.epoch
}

// StartNewConversation drops the active conversation. No request is made.
func (c *Controller) StartNewConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked("")
}

// Resume makes id the active conversation without fetching its history
func (c *Controller) Resume(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked(id)
}

// SelectConversation switches to id and loads its transcript. Unsent
// input and the previous transcript are discarded immediately. An empty
// id starts a new conversation.
func (c *Controller) SelectConversation(ctx context.Context, id string) error {
	if id == "" {
		c.StartNewConversation()
		return nil
	}
	if err := c.identity.RequireAuthenticated(); err != nil {
		return err
	}
	token, _ := c.identity.CurrentToken()

	c.mu.Lock()
	epoch := c.clearLocked(id)
	c.mu.Unlock()

	return c.loadTranscript(ctx, token, id, epoch)
}

func (c *Controller) loadTranscript(ctx context.Context, token, id string, epoch uint64) error {
	entries, err := c.api.History(ctx, token, id)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			c.identity.HandleUnauthorized(token)
			return ErrSessionExpired
		}
		c.logger.Warn("failed to load conversation", "conversation_id", id, "error", err)
		return fmt.Errorf("failed to load conversation %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Debug("discarding stale history", "conversation_id", id)
		return nil
	}
	// Messages asked while the history was loading come after it
	history := fromHistory(entries, id)
	if c.inflight != nil && c.inflight.epoch == epoch {
		c.inflight.index += len(history)
	}
	c.transcript = append(history, c.transcript...)
	return nil
}

// Load performs the initial fetch after sign-in: the directory and, if a
// conversation is active, its transcript, concurrently.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.identity.RequireAuthenticated(); err != nil {
		return err
	}
	token, _ := c.identity.CurrentToken()

	c.mu.Lock()
	id, epoch := c.activeID, c.epoch
	c.mu.Unlock()

	// A failed directory refresh must not cancel the transcript fetch
	var g errgroup.Group
	g.Go(func() error {
		err := c.dir.Refresh(ctx)
		if errors.Is(err, ErrSessionExpired) {
			return err
		}
		return nil
	})
	if id != "" {
		g.Go(func() error {
			return c.loadTranscript(ctx, token, id, epoch)
		})
	}
	return g.Wait()
}

// SetInput replaces the input buffer
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// Input returns the input buffer
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// UseRAG reports whether questions request retrieval
func (c *Controller) UseRAG() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.useRAG
}

// SetUseRAG sets the retrieval flag for subsequent questions
func (c *Controller) SetUseRAG(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useRAG = enabled
}

// ToggleRAG flips the retrieval flag and returns the new value
func (c *Controller) ToggleRAG() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useRAG = !c.useRAG
	return c.useRAG
}

// Reset drops all conversation state, including the directory
func (c *Controller) Reset() {
	c.mu.Lock()
	c.clearLocked("")
	c.inflight = nil
	c.mu.Unlock()
	c.dir.Clear()
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		ActiveID:   c.activeID,
		Transcript: append([]Message(nil), c.transcript...),
		Input:      c.input,
		Loading:    c.inflight != nil,
		UseRAG:     c.useRAG,
	}
}

// SubmitQuestion records text as a user message and sends it
func (c *Controller) SubmitQuestion(ctx context.Context, text string) error {
	ex, err := c.BeginQuestion(text)
	if err != nil {
		return err
	}
	return ex.Send(ctx)
}

// BeginQuestion is the local half of a submission. It appends the user
// message, clears the input, and marks the controller loading. Blank text
// changes nothing.
func (c *Controller) BeginQuestion(text string) (*Exchange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	busy := c.inflight != nil
	c.mu.Unlock()
	if busy {
		return nil, ErrBusy
	}

	if err := c.identity.RequireAuthenticated(); err != nil {
		return nil, err
	}
	token, _ := c.identity.CurrentToken()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != nil {
		return nil, ErrBusy
	}

	c.transcript = append(c.transcript, Message{
		Sender:         SenderUser,
		Text:           text,
		ConversationID: c.activeID,
		Status:         StatusPending,
	})
	c.input = ""

	ex := &Exchange{
		c:              c,
		token:          token,
		question:       text,
		useRAG:         c.useRAG,
		conversationID: c.activeID,
		epoch:          c.epoch,
		index:          len(c.transcript) - 1,
	}
	c.inflight = ex
	return ex, nil
}
