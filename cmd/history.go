// ABOUTME: history command for reading stored messages
// ABOUTME: Prints one conversation with --conversation, or every message otherwise

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
)

var historyConversation string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored messages",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHistory(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyConversation, "conversation", "", "Only show this conversation")
	rootCmd.AddCommand(historyCmd)
}

// runHistory prints stored messages and returns the exit code
func runHistory(ctx context.Context, w io.Writer) int {
	s, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	entries, err := fetchHistory(ctx, s, historyConversation)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitCodeFor(err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHistoryJSON(entries))
	} else {
		fmt.Fprintln(w, formatHistoryHuman(entries))
	}
	return exitOK
}

// fetchHistory loads one conversation through the controller, or the whole
// history straight from the client
func fetchHistory(ctx context.Context, s *stack, id string) ([]client.HistoryEntry, error) {
	if id != "" {
		if err := s.ctrl.SelectConversation(ctx, id); err != nil {
			return nil, err
		}
		msgs := s.ctrl.Snapshot().Transcript
		entries := make([]client.HistoryEntry, 0, len(msgs))
		for _, m := range msgs {
			entries = append(entries, client.HistoryEntry{
				Sender:         string(m.Sender),
				Message:        m.Text,
				ConversationID: m.ConversationID,
			})
		}
		return entries, nil
	}

	if err := s.sessions.RequireAuthenticated(); err != nil {
		return nil, err
	}
	token, _ := s.sessions.CurrentToken()
	entries, err := s.client.History(ctx, token, "")
	if errors.Is(err, client.ErrUnauthorized) {
		s.sessions.HandleUnauthorized(token)
		return nil, conversation.ErrSessionExpired
	}
	return entries, err
}

// formatHistoryHuman labels each message with its sender
func formatHistoryHuman(entries []client.HistoryEntry) string {
	if len(entries) == 0 {
		return "No messages yet."
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		label := "You"
		if e.Sender != string(conversation.SenderUser) {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s", label, e.Message)
	}
	return b.String()
}

// formatHistoryJSON formats messages as JSON, never null
func formatHistoryJSON(entries []client.HistoryEntry) string {
	if entries == nil {
		entries = []client.HistoryEntry{}
	}
	data, _ := json.MarshalIndent(entries, "", "  ")
	return string(data)
}
