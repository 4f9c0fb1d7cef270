// ABOUTME: Test doubles for the session package
// ABOUTME: Fake authenticator and a thread-safe event recorder

package session

import (
	"context"
	"sync"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

type fakeAuth struct {
	mu          sync.Mutex
	loginCalls  int
	loginResp   *client.LoginResponse
	loginErr    error
	registerErr error
	lastCreds   client.Credentials
}

func (f *fakeAuth) Login(_ context.Context, creds client.Credentials) (*client.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	f.lastCreds = creds
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResp, nil
}

func (f *fakeAuth) Register(_ context.Context, creds client.Credentials) (*client.RegisterResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreds = creds
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &client.RegisterResponse{Message: "User registered successfully"}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, ev := range r.all() {
		if ev.Type == t {
			n++
		}
	}
	return n
}
