// ABOUTME: Request and response types plus one method per backend endpoint
// ABOUTME: Covers auth, question answering, history, and conversation listing

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API paths, trailing slashes included as the backend routes them
const (
	PathLogin         = "/api/v1/auth/login/"
	PathRegister      = "/api/v1/auth/register/"
	PathAsk           = "/api/v1/ask/"
	PathHistory       = "/api/v1/history/"
	PathConversations = "/api/v1/conversations/"
)

// Credentials is the body of login and register requests
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Role        string `json:"role,omitempty"`
}

// RegisterResponse is returned by a successful registration
type RegisterResponse struct {
	Message string `json:"message"`
}

// AskRequest is the body of POST /api/v1/ask/.
// ConversationID is omitted entirely when empty.
type AskRequest struct {
	Question       string `json:"question"`
	UseRAG         bool   `json:"use_rag"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AskResponse carries the answer and the conversation it belongs to
type AskResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
}

// HistoryEntry is one stored chat message
type HistoryEntry struct {
	Sender         string `json:"sender"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ConversationSummary is one row of the conversation listing
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	Preview        string `json:"preview"`
	Sender         string `json:"sender"`
	Timestamp      string `json:"timestamp"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Time parses the timestamp. Zone-less values are treated as UTC.
func (s ConversationSummary) Time() (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PreviewLine prefixes the preview with who sent the latest message and
// collapses whitespace onto one line
func (s ConversationSummary) PreviewLine() string {
	prefix := "AI: "
	if s.Sender == "user" {
		prefix = "You: "
	}
	return prefix + strings.Join(strings.Fields(s.Preview), " ")
}

// DateLabel is the timestamp as a local date, or the raw value if it
// does not parse
func (s ConversationSummary) DateLabel() string {
	t, ok := s.Time()
	if !ok {
		return s.Timestamp
	}
	return t.Local().Format("Jan 2, 2006")
}

// Login calls POST /api/v1/auth/login/
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, PathLogin, "", creds, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("invalid response from backend: missing access token")
	}
	return &resp, nil
}

// Register calls POST /api/v1/auth/register/
func (c *Client) Register(ctx context.Context, creds Credentials) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, http.MethodPost, PathRegister, "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ask calls POST /api/v1/ask/
func (c *Client) Ask(ctx context.Context, token string, req AskRequest) (*AskResponse, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var resp AskResponse
	if err := c.do(ctx, http.MethodPost, PathAsk, token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History calls GET /api/v1/history/, filtered by conversation when
// conversationID is set
func (c *Client) History(ctx context.Context, token, conversationID string) ([]HistoryEntry, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	path := PathHistory
	if conversationID != "" {
		path += "?" + url.Values{"conversation_id": {conversationID}}.Encode()
	}
	var entries []HistoryEntry
	if err := c.do(ctx, http.MethodGet, path, token, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Conversations calls GET /api/v1/conversations/
func (c *Client) Conversations(ctx context.Context, token string) ([]ConversationSummary, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var list []ConversationSummary
	if err := c.do(ctx, http.MethodGet, PathConversations, token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
