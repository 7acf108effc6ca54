// Package config loads client configuration: built-in defaults, overlaid
// by an optional YAML config file, overlaid by environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppName is the application directory name under the user config dir.
const AppName = "smart-todo"

// ConfigFile is the optional YAML configuration filename.
const ConfigFile = "config.yaml"

// Config holds application configuration
type Config struct {
	APIBaseURL       string `yaml:"api_base_url"`
	StateDir         string `yaml:"state_dir"`
	DebugMode        bool   `yaml:"debug_mode"`
	ChatHistoryLimit int    `yaml:"chat_history_limit"`
	OIDCIssuer       string `yaml:"oidc_issuer"`
	OIDCClientID     string `yaml:"oidc_client_id"`
	OIDCClientSecret string `yaml:"oidc_client_secret"`
	OIDCRedirectURI  string `yaml:"oidc_redirect_uri"`
}

// Load loads configuration. Environment variables take precedence over the
// config file, which takes precedence over defaults.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:       "http://localhost:8000/api",
		StateDir:         DefaultConfigDir(),
		ChatHistoryLimit: 100,
		OIDCRedirectURI:  "http://localhost:8080/callback",
	}

	if err := loadFile(cfg, filepath.Join(DefaultConfigDir(), ConfigFile)); err != nil {
		return nil, err
	}

	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.StateDir = getEnv("STATE_DIR", cfg.StateDir)
	cfg.DebugMode = getEnvBool("DEBUG_MODE", cfg.DebugMode)
	cfg.ChatHistoryLimit = getEnvInt("CHAT_HISTORY_LIMIT", cfg.ChatHistoryLimit)
	cfg.OIDCIssuer = getEnv("OIDC_ISSUER", cfg.OIDCIssuer)
	cfg.OIDCClientID = getEnv("OIDC_CLIENT_ID", cfg.OIDCClientID)
	cfg.OIDCClientSecret = getEnv("OIDC_CLIENT_SECRET", cfg.OIDCClientSecret)
	cfg.OIDCRedirectURI = getEnv("OIDC_REDIRECT_URI", cfg.OIDCRedirectURI)

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.ChatHistoryLimit < 1 {
		cfg.ChatHistoryLimit = 100
	}

	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// StatePath returns the path of the local state database.
func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "state.db")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func (c *Config) EnsureStateDir() error {
	return os.MkdirAll(c.StateDir, 0o700)
}

// HasOIDC reports whether enough OIDC settings are present for SSO login.
func (c *Config) HasOIDC() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
