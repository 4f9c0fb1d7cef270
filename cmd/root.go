// ABOUTME: Root command for the supportbot CLI
// ABOUTME: Handles global flags, configuration, and shared wiring for subcommands

package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ahmed9588406/customer-support-bot/internal/client"
	"github.com/Ahmed9588406/customer-support-bot/internal/config"
	"github.com/Ahmed9588406/customer-support-bot/internal/conversation"
	"github.com/Ahmed9588406/customer-support-bot/internal/logger"
	"github.com/Ahmed9588406/customer-support-bot/internal/session"
)

var (
	apiURL     string
	jsonOutput bool
	configDir  string
)

// Exit codes
const (
	exitOK    = 0
	exitAuth  = 1 // authentication required or failed
	exitError = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "supportbot",
	Short: "Terminal client for the customer support bot",
	Long: `supportbot is a terminal client for the customer support bot.

Sign in, ask questions, and browse past conversations from the command
line, a full-screen chat, or a plain line-by-line chat.

Environment Variables:
  SUPPORTBOT_API_URL     Backend API URL (default: http://127.0.0.1:8000)
  SUPPORTBOT_USE_RAG     Ask with retrieval enabled (default: true)
  SUPPORTBOT_TIMEOUT     Request timeout in seconds (default: 30)
  SUPPORTBOT_CONFIG_DIR  Directory for config.toml and the saved session
  LOG_LEVEL              debug, info, warn, error
  LOG_FORMAT             text or json`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SUPPORTBOT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides SUPPORTBOT_CONFIG_DIR)")
}

// loadConfig loads configuration with global flags applied on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = config.EnsureScheme(apiURL)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// stack holds the client-side components shared by commands
type stack struct {
	cfg      *config.Config
	client   *client.Client
	sessions *session.Manager
	ctrl     *conversation.Controller
}

func newStack(cfg *config.Config, l *slog.Logger) *stack {
	c := client.New(cfg.APIURL, client.WithTimeout(cfg.RequestTimeout()), client.WithLogger(l))
	mgr := session.NewManager(c, session.NewFileStore(cfg.ConfigDir), session.WithLogger(l))
	ctrl := conversation.NewController(c, mgr, conversation.WithRAG(cfg.UseRAG), conversation.WithLogger(l))
	return &stack{cfg: cfg, client: c, sessions: mgr, ctrl: ctrl}
}

// setup loads config, logs to stderr, and builds the client stack
func setup() (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	l := logger.Init(os.Stderr, cfg.LogLevelOr("warn"), cfg.LogFormat)
	return newStack(cfg, l), nil
}

// exitCodeFor maps an error to the process exit code
func exitCodeFor(err error) int {
	var authErr *session.AuthError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, conversation.ErrSessionExpired),
		errors.As(err, &authErr):
		return exitAuth
	default:
		return exitError
	}
}

// errorMessage is the user-facing text for err
func errorMessage(err error) string {
	var authErr *session.AuthError
	var regErr *session.RegistrationError
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return "not logged in. Run 'supportbot login' first."
	case errors.Is(err, conversation.ErrSessionExpired):
		return "session expired. Run 'supportbot login' again."
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.As(err, &regErr):
		return regErr.Message
	default:
		return err.Error()
	}
}
