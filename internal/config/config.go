// ABOUTME: Configuration loader for the support bot client and dev server
// ABOUTME: Layers environment (.env included) over config.toml over defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// AppName names the config directory
	AppName = "supportbot"
	// FileName is the optional TOML config file inside the config directory
	FileName = "config.toml"

	DefaultAPIURL      = "http://127.0.0.1:8000"
	DefaultDevAddr     = "127.0.0.1:8000"
	defaultTimeoutSecs = 30
	defaultTokenTTL    = 30
)

// envFile is loaded into the process environment if it exists
var envFile = ".env"

type Config struct {
	// Client
	APIURL         string `toml:"api_url"`
	UseRAG         bool   `toml:"use_rag"`
	TimeoutSeconds int    `toml:"timeout_seconds"`

	// Logging. An empty level lets each command pick its default.
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Local stub backend
	DevServer DevServerConfig `toml:"devserver"`

	// ConfigDir holds config.toml, the session file, and debug.log
	ConfigDir string `toml:"-"`
}

// DevServerConfig configures the local stub backend
type DevServerConfig struct {
	Addr            string `toml:"addr"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
	FAQPath         string `toml:"faq_path"`
}

// RequestTimeout returns the per-request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TokenTTL returns how long dev server tokens stay valid
func (d DevServerConfig) TokenTTL() time.Duration {
	return time.Duration(d.TokenTTLMinutes) * time.Minute
}

// LogLevelOr returns the configured log level, or def when none is set
func (c *Config) LogLevelOr(def string) string {
	if c.LogLevel == "" {
		return def
	}
	return c.LogLevel
}

func defaults() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		UseRAG:         true,
		TimeoutSeconds: defaultTimeoutSecs,
		LogFormat:      "text",
		DevServer: DevServerConfig{
			Addr:            DefaultDevAddr,
			TokenTTLMinutes: defaultTokenTTL,
		},
	}
}

// Load builds the configuration. configDir overrides SUPPORTBOT_CONFIG_DIR
// and the XDG default when non-empty.
func Load(configDir string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := defaults()

	if configDir == "" {
		configDir = getEnv("SUPPORTBOT_CONFIG_DIR", DefaultConfigDir())
	}
	cfg.ConfigDir = configDir

	if configDir != "" {
		path := filepath.Join(configDir, FileName)
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	cfg.APIURL = getEnv("SUPPORTBOT_API_URL", cfg.APIURL)
	cfg.UseRAG = getEnvBool("SUPPORTBOT_USE_RAG", cfg.UseRAG)
	cfg.TimeoutSeconds = getEnvInt("SUPPORTBOT_TIMEOUT", cfg.TimeoutSeconds)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.DevServer.Addr = getEnv("SUPPORTBOT_DEV_ADDR", cfg.DevServer.Addr)
	cfg.DevServer.TokenTTLMinutes = getEnvInt("SUPPORTBOT_DEV_TOKEN_TTL", cfg.DevServer.TokenTTLMinutes)
	cfg.DevServer.FAQPath = getEnv("SUPPORTBOT_DEV_FAQ", cfg.DevServer.FAQPath)

	cfg.APIURL = EnsureScheme(cfg.APIURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and URL shape
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid API URL %q", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API URL must use http or https, got %q", u.Scheme)
	}
	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > 600 {
		return fmt.Errorf("SUPPORTBOT_TIMEOUT must be between 1 and 600, got %d", c.TimeoutSeconds)
	}
	if c.DevServer.TokenTTLMinutes < 1 {
		return fmt.Errorf("SUPPORTBOT_DEV_TOKEN_TTL must be positive, got %d", c.DevServer.TokenTTLMinutes)
	}
	return nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// EnsureScheme adds a scheme if the URL has none: http for loopback hosts,
// https otherwise
func EnsureScheme(raw string) string {
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	host := raw
	if i := strings.IndexAny(host, ":/"); i >= 0 {
		host = host[:i]
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "http://" + raw
	}
	return "https://" + raw
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
