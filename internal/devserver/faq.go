// ABOUTME: Keyword FAQ retriever standing in for the real backend's RAG pipeline
// ABOUTME: Loads "question | answer" lines and answers by keyword overlap

package devserver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

const (
	NoContextAnswer  = "I couldn't find any relevant information to answer your question."
	NoResponseAnswer = "Sorry, I couldn't generate a response."
)

// FAQEntry is one question and its canned answer
type FAQEntry struct {
	Question string
	Answer   string
	keywords map[string]struct{}
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "i": {}, "my": {}, "me": {}, "you": {}, "your": {},
	"do": {}, "does": {}, "how": {}, "what": {}, "is": {}, "are": {}, "can": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "for": {}, "and": {}, "or": {}, "it": {},
}

// DefaultFAQ is used when no FAQ file is configured
func DefaultFAQ() []FAQEntry {
	return []FAQEntry{
		{Question: "How do I reset my password?", Answer: "Click 'Forgot password'."},
		{Question: "How do I contact support?", Answer: "Email support@example.com or keep chatting here."},
		{Question: "What are your business hours?", Answer: "Our team is available Monday to Friday, 9am to 5pm."},
		{Question: "How do I update my billing information?", Answer: "Open Settings, then Billing, and edit your payment method."},
		{Question: "Can I cancel my subscription?", Answer: "Yes. Open Settings, then Subscription, and choose Cancel."},
	}
}

// ParseFAQ reads one "question | answer" entry per line. Blank lines and
// lines starting with # are skipped.
func ParseFAQ(r io.Reader) ([]FAQEntry, error) {
	var entries []FAQEntry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		q, a, ok := strings.Cut(text, "|")
		q, a = strings.TrimSpace(q), strings.TrimSpace(a)
		if !ok || q == "" || a == "" {
			return nil, fmt.Errorf("line %d: expected \"question | answer\"", line)
		}
		entries = append(entries, FAQEntry{Question: q, Answer: a})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadFAQ reads an FAQ file
func LoadFAQ(path string) ([]FAQEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FAQ: %w", err)
	}
	defer f.Close()

	entries, err := ParseFAQ(f)
	if err != nil {
		return nil, fmt.Errorf("invalid FAQ %s: %w", path, err)
	}
	return entries, nil
}

// Retriever answers questions from FAQ entries
type Retriever struct {
	entries []FAQEntry
}

func NewRetriever(entries []FAQEntry) *Retriever {
	r := &Retriever{entries: make([]FAQEntry, len(entries))}
	for i, e := range entries {
		e.keywords = keywords(e.Question)
		r.entries[i] = e
	}
	return r
}

// Retrieve returns the best matching answer. At least half of an entry's
// keywords must appear in the question.
func (r *Retriever) Retrieve(question string) (string, bool) {
	query := keywords(question)
	best, bestScore := -1, 0
	for i, e := range r.entries {
		score := 0
		for k := range e.keywords {
			if _, ok := query[k]; ok {
				score++
			}
		}
		if score == 0 || score*2 < len(e.keywords) {
			continue
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", false
	}
	return r.entries[best].Answer, true
}

// Answer replies to a question the way the real backend does when its
// model has nothing to add: a retrieved answer, or a fixed fallback
func (r *Retriever) Answer(question string, useRAG bool) string {
	if answer, ok := r.Retrieve(question); ok {
		return answer
	}
	if useRAG {
		return NoContextAnswer
	}
	return NoResponseAnswer
}

func keywords(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, stop := stopwords[w]; !stop {
			out[w] = struct{}{}
		}
	}
	return out
}
