// ABOUTME: Session identity types, events, and user-facing auth errors
// ABOUTME: A Session is the bearer token, role, and username of the signed-in user

package session

import (
	"errors"
	"fmt"
)

// User-visible messages for authentication outcomes
const (
	MsgInvalidCredentials  = "Invalid credentials"
	MsgCredentialsRequired = "Username and password are required"
	MsgRegistrationFailed  = "Registration failed"
	MsgRegistered          = "Registration successful! Please log in."
)

// ErrNotAuthenticated is returned by guards when no token is held
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the signed-in identity
type Session struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
}

// AuthError is a failed login. Message is safe to show the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// RegistrationError is a failed registration. Message is the backend
// detail when one was given.
type RegistrationError struct {
	Message string
	Err     error
}

func (e *RegistrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// EventType identifies a session transition
type EventType int

const (
	// EventAuthenticated fires after a login or when another process logs in
	EventAuthenticated EventType = iota
	// EventUnauthenticated fires when the session ends
	EventUnauthenticated
	// EventLoginRequired fires when a guarded action runs without a token
	EventLoginRequired
)

func (t EventType) String() string {
	switch t {
	case EventAuthenticated:
		return "authenticated"
	case EventUnauthenticated:
		return "unauthenticated"
	case EventLoginRequired:
		return "login_required"
	default:
		return "unknown"
	}
}

// Reason explains why a session ended or started
type Reason string

const (
	ReasonLogin    Reason = "login"
	ReasonLogout   Reason = "logout"
	ReasonExpired  Reason = "expired"
	ReasonExternal Reason = "external"
)

// Event is delivered to subscribers on every transition
type Event struct {
	Type    EventType
	Reason  Reason
	Session Session
}
