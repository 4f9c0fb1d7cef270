// ABOUTME: HTTP handlers for the stub backend's auth and chat endpoints
// ABOUTME: Error bodies use the {"detail": ...} shape of the real backend

package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

const (
	detailCredentialsRequired = "Username and password are required"
	detailQuestionRequired    = "Question is required"
	defaultRole               = "user"
)

type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, detail string, code int) {
	writeJSON(w, map[string]string{"detail": detail}, code)
}

// decodeBody reads a JSON body, answering 422 with a validation list on
// failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, map[string][]validationIssue{
			"detail": {{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error.jsondecode"}},
		}, http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds client.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeDetail(w, detailCredentialsRequired, http.StatusBadRequest)
		return
	}

	if err := s.store.CreateUser(creds.Username, creds.Password, defaultRole); err != nil {
		if !errors.Is(err, ErrUserExists) {
			s.logger.Warn("registration failed", "username", creds.Username, "error", err)
		}
		writeDetail(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Info("user registered", "username", creds.Username)
	writeJSON(w, client.RegisterResponse{Message: "User registered successfully"}, http.StatusOK)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds client.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeDetail(w, detailCredentialsRequired, http.StatusBadRequest)
		return
	}

	role, err := s.store.Authenticate(creds.Username, creds.Password)
	if err != nil {
		writeDetail(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := s.tokens.Issue(creds.Username)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		writeDetail(w, "Failed to create token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, client.LoginResponse{AccessToken: token, TokenType: "bearer", Role: role}, http.StatusOK)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req client.AskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeDetail(w, detailQuestionRequired, http.StatusBadRequest)
		return
	}

	username := usernameFrom(r.Context())
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	answer := s.retriever.Answer(req.Question, req.UseRAG)
	s.store.AddMessage(username, conversationID, "user", req.Question)
	s.store.AddMessage(username, conversationID, "bot", answer)

	s.logger.Debug("question answered",
		"username", username,
		"conversation_id", conversationID,
		"use_rag", req.UseRAG,
	)
	writeJSON(w, client.AskResponse{Answer: answer, ConversationID: conversationID}, http.StatusOK)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r.Context())
	msgs := s.store.History(username, r.URL.Query().Get("conversation_id"))

	entries := make([]client.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, client.HistoryEntry{
			Sender:         m.Sender,
			Message:        m.Text,
			ConversationID: m.ConversationID,
		})
	}
	writeJSON(w, entries, http.StatusOK)
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.Conversations(usernameFrom(r.Context())), http.StatusOK)
}
