package devserver

import (
	"strings"
	"testing"
)

func TestParseFAQ(t *testing.T) {
	input := `
# comment
How do I reset my password? | Click 'Forgot password'.

Where is my invoice? | Under Billing.
`
	entries, err := ParseFAQ(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Question != "Where is my invoice?" || entries[1].Answer != "Under Billing." {
		t.Errorf("unexpected entry: %+v", entries[1])
	}
}

func TestParseFAQ_MalformedLine(t *testing.T) {
	_, err := ParseFAQ(strings.NewReader("no separator here\n"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("expected line error, got %v", err)
	}
}

func TestRetrieverAnswer(t *testing.T) {
	r := NewRetriever(DefaultFAQ())

	tests := []struct {
		name     string
		question string
		useRAG   bool
		want     string
	}{
		{"exact question", "How do I reset my password?", true, "Click 'Forgot password'."},
		{"reworded", "password reset please", true, "Click 'Forgot password'."},
		{"no match with retrieval", "Tell me a joke", true, NoContextAnswer},
		{"no match without retrieval", "Tell me a joke", false, NoResponseAnswer},
		{"stopwords only", "how do I", true, NoContextAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Answer(tt.question, tt.useRAG); got != tt.want {
				t.Errorf("Answer(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}
