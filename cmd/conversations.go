// ABOUTME: conversations command listing past conversations
// ABOUTME: Shows id, date, and a one-line preview of the latest message

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"ls"},
	Short:   "List your conversations",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runConversations(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}

// runConversations prints the conversation list and returns the exit code
func runConversations(ctx context.Context, w io.Writer) int {
	s, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	dir := s.ctrl.Directory()
	if err := dir.Refresh(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitCodeFor(err)
	}

	items := dir.Items()
	if IsJSONOutput() {
		fmt.Fprintln(w, formatConversationsJSON(items))
	} else {
		fmt.Fprintln(w, formatConversationsHuman(items))
	}
	return exitOK
}

// formatConversationsHuman formats one conversation per line
func formatConversationsHuman(items []client.ConversationSummary) string {
	if len(items) == 0 {
		return "No conversations yet."
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %-12s  %s", item.ConversationID, item.DateLabel(), item.PreviewLine())
	}
	return b.String()
}

// formatConversationsJSON formats the list as JSON, never null
func formatConversationsJSON(items []client.ConversationSummary) string {
	if items == nil {
		items = []client.ConversationSummary{}
	}
	data, _ := json.MarshalIndent(items, "", "  ")
	return string(data)
}
