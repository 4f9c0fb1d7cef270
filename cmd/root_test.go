// ABOUTME: Tests for root command wiring
// ABOUTME: Verifies config flags, exit codes, and error messages

package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
	"github.com/Ahmed9588406/customer-support-bot/internal/session"
)

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	resetGlobals(t, "backend.example.com:9000")
	t.Setenv("SUPPORTBOT_API_URL", "http://env.example.com")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://backend.example.com:9000" {
		t.Errorf("expected flag URL with scheme, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_EnvWithoutFlag(t *testing.T) {
	resetGlobals(t, "")
	t.Setenv("SUPPORTBOT_API_URL", "http://env.example.com")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://env.example.com" {
		t.Errorf("expected env URL, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_ConfigDirFlag(t *testing.T) {
	dir := resetGlobals(t, "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConfigDir != dir {
		t.Errorf("expected config dir %s, got %s", dir, cfg.ConfigDir)
	}
}

func TestJSONOutput(t *testing.T) {
	resetGlobals(t, "")
	if IsJSONOutput() {
		t.Error("expected JSON output off by default")
	}
	jsonOutput = true
	if !IsJSONOutput() {
		t.Error("expected JSON output on")
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"not authenticated", session.ErrNotAuthenticated, exitAuth},
		{"expired", conversation.ErrSessionExpired, exitAuth},
		{"wrapped expired", fmt.Errorf("ask: %w", conversation.ErrSessionExpired), exitAuth},
		{"bad credentials", &session.AuthError{Message: session.MsgInvalidCredentials}, exitAuth},
		{"registration", &session.RegistrationError{Message: "taken"}, exitError},
		{"transport", &client.TransportError{Err: errors.New("refused")}, exitError},
		{"busy", conversation.ErrBusy, exitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCodeFor(tc.err); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not authenticated", session.ErrNotAuthenticated, "not logged in. Run 'supportbot login' first."},
		{"expired", conversation.ErrSessionExpired, "session expired. Run 'supportbot login' again."},
		{"auth", &session.AuthError{Message: session.MsgInvalidCredentials}, session.MsgInvalidCredentials},
		{"registration", &session.RegistrationError{Message: "Username already registered"}, "Username already registered"},
		{"other", errors.New("boom"), "boom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := errorMessage(tc.err); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
