// ABOUTME: ask command for one-shot questions
// ABOUTME: Continues an existing conversation when --conversation is given

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
	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
)

var (
	askConversation string
	askRAG          bool
	askRAGSet       bool
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Ask a single question",
	Long: `Ask the support bot a question and print the answer.

Without --conversation a new conversation is started; its id is printed
so follow-up questions can continue it.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		askRAGSet = cmd.Flags().Changed("rag")
		exitCode := runAsk(ctx, os.Stdout, strings.Join(args, " "))
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "Conversation id to continue")
	askCmd.Flags().BoolVar(&askRAG, "rag", true, "Use retrieval (overrides SUPPORTBOT_USE_RAG)")
	rootCmd.AddCommand(askCmd)
}

// runAsk sends question and returns the exit code
func runAsk(ctx context.Context, w io.Writer, question string) int {
	s, err := setup()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if askRAGSet {
		s.ctrl.SetUseRAG(askRAG)
	}
	if askConversation != "" {
		s.ctrl.Resume(askConversation)
	}

	if err := s.ctrl.SubmitQuestion(ctx, question); err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitCodeFor(err)
	}

	st := s.ctrl.Snapshot()
	answer := ""
	if n := len(st.Transcript); n > 0 && st.Transcript[n-1].Sender == conversation.SenderBot {
		answer = st.Transcript[n-1].Text
	}
	resp := client.AskResponse{Answer: answer, ConversationID: st.ActiveID}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatAskJSON(resp))
	} else {
		fmt.Fprintln(w, formatAskHuman(resp))
	}
	return exitOK
}

// formatAskHuman formats the answer for human readability
func formatAskHuman(resp client.AskResponse) string {
	return fmt.Sprintf("%s\n\nConversation: %s", resp.Answer, resp.ConversationID)
}

// formatAskJSON formats the answer as JSON
func formatAskJSON(resp client.AskResponse) string {
	data, _ := json.MarshalIndent(resp, "", "  ")
	return string(data)
}
