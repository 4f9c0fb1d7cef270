// ABOUTME: Tests for login, register, logout, and whoami
// ABOUTME: Runs the commands against the stub backend with a temporary config dir

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Ahmed9588406/customer-support-bot/internal/session"
)

func TestRunLogin_Success(t *testing.T) {
	url := newBackend(t)
	dir := resetGlobals(t, url)
	createUser(t, url, "alice", "s3cret")

	loginFlags = credentialFlags{username: "alice", passwordStdin: true}
	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, strings.NewReader("s3cret\n"))

	if code != exitOK {
		t.Fatalf("expected exit %d, got %d: %s", exitOK, code, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as alice.") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	sess, ok, err := session.NewFileStore(dir).Load()
	if err != nil || !ok {
		t.Fatalf("expected saved session, got ok=%v err=%v", ok, err)
	}
	if sess.Username != "alice" || sess.Token == "" {
		t.Errorf("unexpected saved session %+v", sess)
	}
}

func TestRunLogin_InvalidCredentials(t *testing.T) {
	url := newBackend(t)
	resetGlobals(t, url)
	createUser(t, url, "alice", "s3cret")

	loginFlags = credentialFlags{username: "alice", passwordStdin: true}
	var buf bytes.Buffer
	code := runLogin(context.Background(), &buf, strings.NewReader("wrong\n"))

	if code != exitAuth {
		t.Errorf("expected exit %d, got %d", exitAuth, code)
	}
	if !strings.Contains(buf.String(), session.MsgInvalidCredentials) {
		t.Errorf("expected invalid credentials message, got %s", buf.String())
	}
}

func TestRunLogin_JSON(t *testing.T) {
	url := newBackend(t)
	resetGlobals(t, url)
	createUser(t, url, "alice", "s3cret")
	jsonOutput = true

	loginFlags = credentialFlags{username: "alice", passwordStdin: true}
	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, strings.NewReader("s3cret\n")); code != exitOK {
		t.Fatalf("expected exit %d, got %d", exitOK, code)
	}

	var parsed map[string]string
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["username"] != "alice" {
		t.Errorf("expected username in JSON, got %v", parsed)
	}
	if _, ok := parsed["token"]; ok {
		t.Error("token must not be printed")
	}
}

func TestRunRegister(t *testing.T) {
	url := newBackend(t)
	resetGlobals(t, url)

	registerFlags = credentialFlags{username: "bob", passwordStdin: true}
	var buf bytes.Buffer
	code := runRegister(context.Background(), &buf, strings.NewReader("pw\n"))

	if code != exitOK {
		t.Fatalf("expected exit %d, got %d: %s", exitOK, code, buf.String())
	}
	if !strings.Contains(buf.String(), session.MsgRegistered) {
		t.Errorf("expected registration notice, got %s", buf.String())
	}
}

func TestRunRegister_Duplicate(t *testing.T) {
	url := newBackend(t)
	resetGlobals(t, url)
	createUser(t, url, "bob", "pw")

	registerFlags = credentialFlags{username: "bob", passwordStdin: true}
	var buf bytes.Buffer
	code := runRegister(context.Background(), &buf, strings.NewReader("pw\n"))

	if code != exitError {
		t.Errorf("expected exit %d, got %d", exitError, code)
	}
	if !strings.Contains(buf.String(), "Username already registered") {
		t.Errorf("expected backend detail, got %s", buf.String())
	}
}

func TestRunWhoami(t *testing.T) {
	url := newBackend(t)
	resetGlobals(t, url)

	var buf bytes.Buffer
	if code := runWhoami(&buf); code != exitAuth {
		t.Errorf("expected exit %d before login, got %d", exitAuth, code)
	}
	if !strings.Contains(buf.String(), "Not logged in.") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	createUser(t, url, "alice", "s3cret")
	loginAs(t, "alice", "s3cret")

	buf.Reset()
	if code := runWhoami(&buf); code != exitOK {
		t.Fatalf("expected exit %d after login, got %d", exitOK, code)
	}
	if !strings.Contains(buf.String(), "User: alice") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRunLogout(t *testing.T) {
	url := newBackend(t)
	resetGlobals(t, url)
	createUser(t, url, "alice", "s3cret")
	loginAs(t, "alice", "s3cret")

	var buf bytes.Buffer
	if code := runLogout(&buf); code != exitOK {
		t.Fatalf("expected exit %d, got %d", exitOK, code)
	}
	if !strings.Contains(buf.String(), "Logged out.") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	if code := runWhoami(&buf); code != exitAuth {
		t.Errorf("expected logged out session, got exit %d", code)
	}
}

func TestFormatSessionJSON_OmitsToken(t *testing.T) {
	out := formatSessionJSON(session.Session{Token: "secret-token", Role: "user", Username: "alice"})
	if strings.Contains(out, "secret-token") {
		t.Error("token leaked into JSON output")
	}
	if !strings.Contains(out, `"role": "user"`) {
		t.Errorf("expected role in output: %s", out)
	}
}
