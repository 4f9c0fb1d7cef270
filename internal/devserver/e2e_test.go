// ABOUTME: End-to-end tests driving the client state machine against the stub backend
// ABOUTME: Covers login, ask without a conversation, expiry, and conversation switching

package devserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
	"github.com/Ahmed9588406/customer-support-bot/internal/devserver"
	"github.com/Ahmed9588406/customer-support-bot/internal/session"
)

// askRecorder keeps the raw bodies of ask requests
type askRecorder struct {
	mu     sync.Mutex
	bodies []map[string]interface{}
}

func (a *askRecorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == client.PathAsk {
			data, _ := io.ReadAll(r.Body)
			var body map[string]interface{}
			json.Unmarshal(data, &body)
			a.mu.Lock()
			a.bodies = append(a.bodies, body)
			a.mu.Unlock()
			r.Body = io.NopCloser(bytes.NewReader(data))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *askRecorder) all() []map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]map[string]interface{}(nil), a.bodies...)
}

type stack struct {
	server  *httptest.Server
	client  *client.Client
	manager *session.Manager
	ctrl    *conversation.Controller
	asks    *askRecorder
	events  chan session.Event
}

func newStack(t *testing.T, ttl time.Duration) *stack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := devserver.New(devserver.Options{TokenTTL: ttl, BcryptCost: bcrypt.MinCost, Logger: logger})
	t.Cleanup(srv.Close)

	asks := &askRecorder{}
	ts := httptest.NewServer(asks.wrap(srv.Handler()))
	t.Cleanup(ts.Close)

	c := client.New(ts.URL, client.WithLogger(logger))
	mgr := session.NewManager(c, session.NewFileStore(t.TempDir()), session.WithLogger(logger))
	ctrl := conversation.NewController(c, mgr, conversation.WithLogger(logger))

	events := make(chan session.Event, 16)
	mgr.Subscribe(func(ev session.Event) {
		if ev.Type == session.EventUnauthenticated {
			ctrl.Reset()
		}
		events <- ev
	})

	return &stack{server: ts, client: c, manager: mgr, ctrl: ctrl, asks: asks, events: events}
}

func (s *stack) signIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.manager.Register(ctx, "alice", "s3cret"))
	_, err := s.manager.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
}

func TestRoundTrip_AskWithoutConversation(t *testing.T) {
	s := newStack(t, time.Minute)
	s.signIn(t)

	token, ok := s.manager.CurrentToken()
	require.True(t, ok)
	require.NotEmpty(t, token)

	require.NoError(t, s.ctrl.SubmitQuestion(context.Background(), "How do I reset my password?"))

	bodies := s.asks.all()
	require.Len(t, bodies, 1)
	_, present := bodies[0]["conversation_id"]
	assert.False(t, present, "conversation_id must be omitted for a new chat")
	assert.Equal(t, true, bodies[0]["use_rag"])

	st := s.ctrl.Snapshot()
	require.Len(t, st.Transcript, 2)
	assert.Equal(t, conversation.SenderUser, st.Transcript[0].Sender)
	assert.Equal(t, "How do I reset my password?", st.Transcript[0].Text)
	assert.Equal(t, conversation.SenderBot, st.Transcript[1].Sender)
	assert.Equal(t, "Click 'Forgot password'.", st.Transcript[1].Text)
	assert.NotEmpty(t, st.ActiveID)

	items := s.ctrl.Directory().Items()
	require.Len(t, items, 1)
	assert.Equal(t, st.ActiveID, items[0].ConversationID)
	_, parsed := items[0].Time()
	assert.True(t, parsed, "directory timestamps parse")

	// A follow-up stays in the same conversation
	require.NoError(t, s.ctrl.SubmitQuestion(context.Background(), "What are your business hours?"))
	bodies = s.asks.all()
	require.Len(t, bodies, 2)
	assert.Equal(t, st.ActiveID, bodies[1]["conversation_id"])
}

func TestRoundTrip_SwitchConversations(t *testing.T) {
	s := newStack(t, time.Minute)
	s.signIn(t)
	ctx := context.Background()

	require.NoError(t, s.ctrl.SubmitQuestion(ctx, "How do I reset my password?"))
	first := s.ctrl.Snapshot().ActiveID

	s.ctrl.StartNewConversation()
	require.NoError(t, s.ctrl.SubmitQuestion(ctx, "Can I cancel my subscription?"))
	second := s.ctrl.Snapshot().ActiveID
	require.NotEqual(t, first, second)

	require.Len(t, s.ctrl.Directory().Items(), 2)
	assert.Equal(t, second, s.ctrl.Directory().Items()[0].ConversationID)

	require.NoError(t, s.ctrl.SelectConversation(ctx, first))
	st := s.ctrl.Snapshot()
	assert.Equal(t, first, st.ActiveID)
	require.Len(t, st.Transcript, 2)
	assert.Equal(t, "How do I reset my password?", st.Transcript[0].Text)
}

func TestRoundTrip_ExpiredTokenEndsSessionOnce(t *testing.T) {
	s := newStack(t, 50*time.Millisecond)
	s.signIn(t)
	<-s.events // authenticated

	time.Sleep(100 * time.Millisecond)

	err := s.ctrl.SubmitQuestion(context.Background(), "hello")
	assert.ErrorIs(t, err, conversation.ErrSessionExpired)

	ev := <-s.events
	assert.Equal(t, session.EventUnauthenticated, ev.Type)
	assert.Equal(t, session.ReasonExpired, ev.Reason)

	_, ok := s.manager.CurrentToken()
	assert.False(t, ok)
	assert.Empty(t, s.ctrl.Snapshot().Transcript)

	// Later calls fail locally without a second transition
	assert.ErrorIs(t, s.ctrl.Directory().Refresh(context.Background()), session.ErrNotAuthenticated)
	ev = <-s.events
	assert.Equal(t, session.EventLoginRequired, ev.Type)
	select {
	case ev := <-s.events:
		t.Fatalf("unexpected extra event %v", ev.Type)
	default:
	}
}

func TestRoundTrip_LoginFailures(t *testing.T) {
	s := newStack(t, time.Minute)
	ctx := context.Background()

	_, err := s.manager.Login(ctx, "ghost", "pw")
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, session.MsgInvalidCredentials, authErr.Message)

	require.NoError(t, s.manager.Register(ctx, "alice", "pw"))
	err = s.manager.Register(ctx, "alice", "pw")
	var regErr *session.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "Username already registered", regErr.Message)
}
