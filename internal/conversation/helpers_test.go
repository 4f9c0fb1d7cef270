// ABOUTME: Test doubles for the conversation package
// ABOUTME: Scriptable backend API and an in-memory identity

package conversation

import (
	"context"
	"sync"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/session"
)

type fakeAPI struct {
	mu sync.Mutex

	askFn           func(req client.AskRequest) (*client.AskResponse, error)
	historyFn       func(id string) ([]client.HistoryEntry, error)
	conversationsFn func() ([]client.ConversationSummary, error)

	askCalls           []client.AskRequest
	historyCalls       []string
	conversationsCalls int
}

func (f *fakeAPI) Ask(_ context.Context, _ string, req client.AskRequest) (*client.AskResponse, error) {
	f.mu.Lock()
	f.askCalls = append(f.askCalls, req)
	fn := f.askFn
	f.mu.Unlock()
	if fn == nil {
		return &client.AskResponse{Answer: "ok", ConversationID: "c1"}, nil
	}
	return fn(req)
}

func (f *fakeAPI) History(_ context.Context, _ string, id string) ([]client.HistoryEntry, error) {
	f.mu.Lock()
	f.historyCalls = append(f.historyCalls, id)
	fn := f.historyFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(id)
}

func (f *fakeAPI) Conversations(_ context.Context, _ string) ([]client.ConversationSummary, error) {
	f.mu.Lock()
	f.conversationsCalls++
	fn := f.conversationsFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn()
}

func (f *fakeAPI) asks() []client.AskRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.AskRequest(nil), f.askCalls...)
}

func (f *fakeAPI) historyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.historyCalls)
}

func (f *fakeAPI) conversationsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conversationsCalls
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.askCalls) + len(f.historyCalls) + f.conversationsCalls
}

type fakeIdentity struct {
	mu            sync.Mutex
	token         string
	loginRequired int
	expired       int
}

func (f *fakeIdentity) CurrentToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeIdentity) RequireAuthenticated() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		f.loginRequired++
		return session.ErrNotAuthenticated
	}
	return nil
}

func (f *fakeIdentity) HandleUnauthorized(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" || f.token != token {
		return false
	}
	f.token = ""
	f.expired++
	return true
}

func newTestController(api *fakeAPI) (*Controller, *fakeIdentity) {
	id := &fakeIdentity{token: "tok"}
	return NewController(api, id), id
}
