// ABOUTME: Conversation directory listing the user's past conversations
// ABOUTME: Refreshed by full re-fetch; concurrent refreshes share one request

package conversation

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

// API is the subset of the backend client used for conversations
type API interface {
	Ask(ctx context.Context, token string, req client.AskRequest) (*client.AskResponse, error)
	History(ctx context.Context, token, conversationID string) ([]client.HistoryEntry, error)
	Conversations(ctx context.Context, token string) ([]client.ConversationSummary, error)
}

// Identity supplies the token and the central expiry policy
type Identity interface {
	CurrentToken() (string, bool)
	RequireAuthenticated() error
	HandleUnauthorized(token string) bool
}

// Directory holds the conversation list
type Directory struct {
	api      API
	identity Identity
	logger   *slog.Logger
	group    singleflight.Group

	mu    sync.RWMutex
	items []client.ConversationSummary
}

// NewDirectory creates an empty directory
func NewDirectory(api API, identity Identity, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{api: api, identity: identity, logger: logger}
}

// Refresh replaces the list with the backend's. On failure the previous
// list is kept.
func (d *Directory) Refresh(ctx context.Context) error {
	if err := d.identity.RequireAuthenticated(); err != nil {
		return err
	}
	token, _ := d.identity.CurrentToken()

	v, err, _ := d.group.Do(token, func() (interface{}, error) {
		return d.api.Conversations(ctx, token)
	})
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			d.identity.HandleUnauthorized(token)
			return ErrSessionExpired
		}
		d.logger.Warn("failed to refresh conversations", "error", err)
		return err
	}

	// A list fetched for a session that has since ended is dropped
	if current, ok := d.identity.CurrentToken(); !ok || current != token {
		return nil
	}

	list := v.([]client.ConversationSummary)
	d.mu.Lock()
	d.items = append([]client.ConversationSummary(nil), list...)
	d.mu.Unlock()
	d.logger.Debug("conversations refreshed", "count", len(list))
	return nil
}

// Items returns a copy of the list
func (d *Directory) Items() []client.ConversationSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]client.ConversationSummary(nil), d.items...)
}

// Clear empties the list
func (d *Directory) Clear() {
	d.mu.Lock()
	d.items = nil
	d.mu.Unlock()
}
