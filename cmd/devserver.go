// ABOUTME: devserver command running the local stub backend
// ABOUTME: Serves the same API as the real backend from memory for development and demos

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ahmed9588406/customer-support-bot/internal/devserver"
	"github.com/Ahmed9588406/customer-support-bot/internal/logger"
)

var devserverAddr string

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local stub backend",
	Long: `Run an in-memory backend implementing the support bot API.

Accounts, tokens, and conversations live only as long as the process.
Answers come from a small FAQ, replaceable with SUPPORTBOT_DEV_FAQ.

Environment Variables:
  SUPPORTBOT_DEV_ADDR       Listen address (default: 127.0.0.1:8000)
  SUPPORTBOT_DEV_TOKEN_TTL  Token lifetime in minutes (default: 30)
  SUPPORTBOT_DEV_FAQ        Path to an FAQ file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runDevServer(ctx)
	},
}

func init() {
	devserverCmd.Flags().StringVar(&devserverAddr, "addr", "", "Listen address (overrides SUPPORTBOT_DEV_ADDR)")
	rootCmd.AddCommand(devserverCmd)
}

func runDevServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l := logger.Init(os.Stderr, cfg.LogLevelOr("info"), cfg.LogFormat)

	addr := cfg.DevServer.Addr
	if devserverAddr != "" {
		addr = devserverAddr
	}

	var faq []devserver.FAQEntry
	if cfg.DevServer.FAQPath != "" {
		faq, err = devserver.LoadFAQ(cfg.DevServer.FAQPath)
		if err != nil {
			return err
		}
		l.Info("FAQ loaded", "path", cfg.DevServer.FAQPath, "entries", len(faq))
	}

	srv := devserver.New(devserver.Options{
		TokenTTL: cfg.DevServer.TokenTTL(),
		FAQ:      faq,
		Logger:   l,
	})
	defer srv.Close()

	fmt.Fprintf(os.Stderr, "Listening on http://%s\n", addr)
	return srv.ListenAndServe(ctx, addr)
}
