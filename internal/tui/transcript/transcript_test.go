// ABOUTME: Tests for transcript rendering
// ABOUTME: Checks message order, status markers, and the loading line

package transcript

import (
	"strings"
	"testing"

	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
)

func plain(text string) string { return text }

func TestRenderEmpty(t *testing.T) {
	got := Render(nil, false, "", 60, plain)
	if !strings.Contains(got, EmptyText) {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestRenderOrderAndLabels(t *testing.T) {
	msgs := []conversation.Message{
		{Sender: conversation.SenderUser, Text: "How do I reset my password?", Status: conversation.StatusConfirmed},
		{Sender: conversation.SenderBot, Text: "Click 'Forgot password'.", Status: conversation.StatusConfirmed},
	}

	got := Render(msgs, false, "", 60, plain)

	q := strings.Index(got, "How do I reset my password?")
	a := strings.Index(got, "Click 'Forgot password'.")
	if q < 0 || a < 0 {
		t.Fatalf("expected both messages, got %q", got)
	}
	if q > a {
		t.Error("expected question before answer")
	}
	if !strings.Contains(got, "You") || !strings.Contains(got, "Assistant") {
		t.Error("expected sender labels")
	}
	if strings.Contains(got, EmptyText) {
		t.Error("did not expect empty text with messages")
	}
}

func TestRenderBotUsesMarkdown(t *testing.T) {
	msgs := []conversation.Message{
		{Sender: conversation.SenderBot, Text: "**bold**", Status: conversation.StatusConfirmed},
		{Sender: conversation.SenderUser, Text: "**raw**", Status: conversation.StatusConfirmed},
	}
	md := func(s string) string { return "<md>" + s + "</md>" }

	got := Render(msgs, false, "", 60, md)
	if !strings.Contains(got, "<md>**bold**</md>") {
		t.Error("expected bot text rendered as markdown")
	}
	if strings.Contains(got, "<md>**raw**</md>") {
		t.Error("expected user text left as typed")
	}
}

func TestRenderStatusMarkers(t *testing.T) {
	pending := Render([]conversation.Message{
		{Sender: conversation.SenderUser, Text: "hi", Status: conversation.StatusPending},
	}, true, "*", 60, plain)
	if !strings.Contains(pending, "sending") {
		t.Error("expected pending marker")
	}
	if !strings.Contains(pending, "* Loading...") {
		t.Errorf("expected loading line with spinner, got %q", pending)
	}

	failed := Render([]conversation.Message{
		{Sender: conversation.SenderUser, Text: "hi", Status: conversation.StatusFailed},
		{Sender: conversation.SenderBot, Text: conversation.MsgSomethingWentWrong},
	}, false, "", 60, plain)
	if !strings.Contains(failed, "not delivered") {
		t.Error("expected failed marker")
	}
	if !strings.Contains(failed, conversation.MsgSomethingWentWrong) {
		t.Error("expected error reply")
	}
	if strings.Contains(failed, "Loading...") {
		t.Error("did not expect loading line")
	}
}

func TestTranscriptView(t *testing.T) {
	tr := New()
	tr.SetSize(60, 10)
	tr.SetMessages([]conversation.Message{
		{Sender: conversation.SenderUser, Text: "Where is my order?", Status: conversation.StatusConfirmed},
	}, false, "")

	if !strings.Contains(tr.View(), "Where is my order?") {
		t.Errorf("expected message in view, got %q", tr.View())
	}
}

func TestTranscriptFollowsNewMessages(t *testing.T) {
	tr := New()
	tr.SetSize(60, 4)

	var msgs []conversation.Message
	for i := 0; i < 20; i++ {
		msgs = append(msgs, conversation.Message{Sender: conversation.SenderUser, Text: "line", Status: conversation.StatusConfirmed})
	}
	msgs = append(msgs, conversation.Message{Sender: conversation.SenderUser, Text: "latest question", Status: conversation.StatusPending})
	tr.SetMessages(msgs, false, "")

	if !strings.Contains(tr.View(), "latest question") {
		t.Errorf("expected view scrolled to newest message, got %q", tr.View())
	}
}
