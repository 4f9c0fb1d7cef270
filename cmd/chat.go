// ABOUTME: chat command starting an interactive session
// ABOUTME: Runs the full-screen TUI, or a plain line chat with --plain or without a terminal

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Ahmed9588406/customer-support-bot/internal/logger"
	"github.com/Ahmed9588406/customer-support-bot/internal/repl"
	"github.com/Ahmed9588406/customer-support-bot/internal/session"
	"github.com/Ahmed9588406/customer-support-bot/internal/tui"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the support bot",
	Long: `Open an interactive chat. Sign-in happens inside the chat when no
session is saved.

The full-screen interface needs a terminal at least 80 columns wide.
Use --plain for a line-by-line chat that works anywhere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runChat(ctx)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "Use the line-by-line chat instead of the full-screen UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the chat, so logs go to a file
	closeLog, err := logger.InitFile(cfg.ConfigDir, cfg.LogLevelOr("info"), cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer closeLog()

	s := newStack(cfg, slog.Default())

	// Follow logins and logouts made by other supportbot processes
	if err := s.sessions.Watch(ctx); err != nil && !errors.Is(err, session.ErrNotWatchable) {
		slog.Warn("session watch disabled", "error", err)
	}

	if chatPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		line := repl.NewLiner(cfg.ConfigDir)
		defer line.Close()
		return repl.New(line, os.Stdout, s.sessions, s.ctrl).Run(ctx)
	}
	return tui.Run(s.sessions, s.ctrl)
}
