// ABOUTME: In-memory users and chat history for the local stub backend
// ABOUTME: Passwords are bcrypt hashed; history is kept per user and conversation

package devserver

import (
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TimestampLayout matches the zone-less ISO timestamps of the real backend
const TimestampLayout = "2006-01-02T15:04:05.000000"

const previewLength = 100

var (
	ErrUserExists        = errors.New("Username already registered")
	ErrUserNotFound      = errors.New("User not found")
	ErrIncorrectPassword = errors.New("Incorrect password")
)

type user struct {
	username string
	hash     []byte
	role     string
}

// StoredMessage is one persisted chat line
type StoredMessage struct {
	seq            int
	Username       string
	ConversationID string
	Sender         string
	Text           string
	Timestamp      time.Time
}

// Summary is the latest message of a conversation
type Summary struct {
	ConversationID string `json:"conversation_id"`
	Preview        string `json:"preview"`
	Sender         string `json:"sender"`
	Timestamp      string `json:"timestamp"`
}

type Store struct {
	mu         sync.RWMutex
	users      map[string]*user
	messages   []StoredMessage
	seq        int
	bcryptCost int
	now        func() time.Time
}

func NewStore(bcryptCost int) *Store {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		users:      make(map[string]*user),
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser registers username with a hashed password
func (s *Store) CreateUser(username, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	s.users[username] = &user{username: username, hash: hash, role: role}
	return nil
}

// Authenticate checks a password and returns the user's role
func (s *Store) Authenticate(username, password string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return "", ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return "", ErrIncorrectPassword
	}
	return u.role, nil
}

// AddMessage appends a message to a user's conversation
func (s *Store) AddMessage(username, conversationID, sender, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.messages = append(s.messages, StoredMessage{
		seq:            s.seq,
		Username:       username,
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		Timestamp:      s.now(),
	})
}

// History returns a user's messages oldest first, optionally limited to
// one conversation
func (s *Store) History(username, conversationID string) []StoredMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []StoredMessage{}
	for _, m := range s.messages {
		if m.Username != username {
			continue
		}
		if conversationID != "" && m.ConversationID != conversationID {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Conversations lists a user's conversations, most recently active first
func (s *Store) Conversations(username string) []Summary {
	s.mu.RLock()
	latest := make(map[string]StoredMessage)
	for _, m := range s.messages {
		if m.Username == username {
			latest[m.ConversationID] = m
		}
	}
	s.mu.RUnlock()

	msgs := make([]StoredMessage, 0, len(latest))
	for _, m := range latest {
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].seq > msgs[j].seq })

	out := make([]Summary, 0, len(msgs))
	for _, m := range msgs {
		preview := m.Text
		if r := []rune(preview); len(r) > previewLength {
			preview = string(r[:previewLength])
		}
		out = append(out, Summary{
			ConversationID: m.ConversationID,
			Preview:        preview,
			Sender:         m.Sender,
			Timestamp:      m.Timestamp.Format(TimestampLayout),
		})
	}
	return out
}
