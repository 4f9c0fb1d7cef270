// ABOUTME: Test helpers for command tests
// ABOUTME: Starts the stub backend and isolates global flags and config per test

package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/devserver"
)

// resetGlobals points the commands at url with a fresh config dir and
// restores every global flag when the test ends
func resetGlobals(t *testing.T, url string) string {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("SUPPORTBOT_API_URL", "")
	t.Setenv("SUPPORTBOT_CONFIG_DIR", "")
	t.Setenv("SUPPORTBOT_USE_RAG", "")
	t.Setenv("LOG_LEVEL", "error")

	apiURL, jsonOutput, configDir = url, false, dir
	loginFlags, registerFlags = credentialFlags{}, credentialFlags{}
	askConversation, askRAG, askRAGSet = "", true, false
	historyConversation = ""

	t.Cleanup(func() {
		apiURL, jsonOutput, configDir = "", false, ""
		loginFlags, registerFlags = credentialFlags{}, credentialFlags{}
		askConversation, askRAG, askRAGSet = "", true, false
		historyConversation = ""
	})
	return dir
}

// newBackend starts the stub backend and returns its URL
func newBackend(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := devserver.New(devserver.Options{TokenTTL: time.Minute, BcryptCost: bcrypt.MinCost, Logger: logger})
	t.Cleanup(srv.Close)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// createUser registers username directly against the backend
func createUser(t *testing.T, url, username, password string) {
	t.Helper()
	c := client.New(url)
	if _, err := c.Register(context.Background(), client.Credentials{Username: username, Password: password}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
}

// loginAs signs in through the login command so later commands share the session
func loginAs(t *testing.T, username, password string) {
	t.Helper()
	loginFlags = credentialFlags{username: username, passwordStdin: true}
	var buf strings.Builder
	if code := runLogin(context.Background(), &buf, strings.NewReader(password+"\n")); code != exitOK {
		t.Fatalf("login failed with %d: %s", code, buf.String())
	}
	loginFlags = credentialFlags{}
}
