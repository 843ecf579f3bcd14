// Package config handles configuration and API key resolution for cookieschat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v10"

	"github.com/diogo/cookieschat/internal/chat"
	apierrors "github.com/diogo/cookieschat/internal/errors"
	"github.com/diogo/cookieschat/internal/models"
)

// Backends supported for talking to the generation service
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

// DefaultFallbackMessage is appended to the conversation when a turn fails
const DefaultFallbackMessage = chat.DefaultFallbackMessage

// placeholderAPIKey is the value shipped in the old config template
const placeholderAPIKey = "YOUR_GEMINI_API_KEY_HERE"

// MarkdownConfig configures terminal rendering of model replies
type MarkdownConfig struct {
	Style            string `json:"style" env:"GLAMOUR_STYLE"` // "dark", "light", "dracula", "notty"
	EnableEmoji      bool   `json:"enable_emoji"`
	PreserveNewLines bool   `json:"preserve_newlines"`
}

// ServerConfig configures the web interface
type ServerConfig struct {
	Addr string `json:"addr" env:"COOKIESCHAT_ADDR"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" env:"COOKIESCHAT_METRICS_ENABLED"`
	Addr    string `json:"addr" env:"COOKIESCHAT_METRICS_ADDR"`
}

// Config represents the user configuration
type Config struct {
	// APIKey may be stored in the file, but the environment always wins.
	APIKey string `json:"api_key,omitempty" env:"GEMINI_API_KEY"`
	// LegacyAPIKey is the variable name used by the old web build.
	LegacyAPIKey string `json:"-" env:"VITE_GEMINI_API_KEY"`

	Model           string `json:"model" env:"COOKIESCHAT_MODEL"`
	Backend         string `json:"backend" env:"COOKIESCHAT_BACKEND"`
	FallbackMessage string `json:"fallback_message"`
	LogLevel        string `json:"log_level" env:"COOKIESCHAT_LOG_LEVEL"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	TUITheme        string `json:"tui_theme,omitempty"`

	Markdown MarkdownConfig `json:"markdown"`
	Server   ServerConfig   `json:"server"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Model:           models.DefaultModel,
		Backend:         BackendREST,
		FallbackMessage: DefaultFallbackMessage,
		LogLevel:        "info",
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
		Server:          ServerConfig{Addr: "127.0.0.1:8080"},
		Metrics:         MetricsConfig{Enabled: false, Addr: "127.0.0.1:9090"},
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".cookieschat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// The directory may hold an API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path of the log file used while the TUI owns the terminal
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cookieschat.log"), nil
}

// LoadConfig loads the configuration from disk and overlays the environment.
// A missing file is not an error.
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), apierrors.NewConfigurationError("", "", err)
	}
	return LoadConfigFrom(configPath)
}

// LoadFileConfig loads the configuration file at path without the
// environment overlay. A missing file yields the defaults.
func LoadFileConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), apierrors.NewConfigurationError(path, "failed to parse config file", err)
		}
	case os.IsNotExist(err):
		// Use defaults
	default:
		return DefaultConfig(), apierrors.NewConfigurationError(path, "failed to read config file", err)
	}

	return cfg, nil
}

// LoadConfigFrom loads the configuration from path and overlays the environment
func LoadConfigFrom(path string) (Config, error) {
	cfg, err := LoadFileConfig(path)
	if err != nil {
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, apierrors.NewConfigurationError("environment", "failed to parse environment", err)
	}

	if cfg.Backend != BackendREST && cfg.Backend != BackendSDK {
		return cfg, apierrors.NewConfigurationError("backend", fmt.Sprintf("unknown backend %q", cfg.Backend), nil)
	}
	if cfg.Model == "" {
		cfg.Model = models.DefaultModel
	}
	if cfg.FallbackMessage == "" {
		cfg.FallbackMessage = DefaultFallbackMessage
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveAPIKey returns the first usable API key, or ""
func ResolveAPIKey(cfg Config) string {
	for _, key := range []string{cfg.APIKey, cfg.LegacyAPIKey} {
		key = strings.TrimSpace(key)
		if key != "" && key != placeholderAPIKey {
			return key
		}
	}
	return ""
}

// RequireAPIKey returns the API key or a ConfigurationError when none is set
func RequireAPIKey(cfg Config) (string, error) {
	key := ResolveAPIKey(cfg)
	if key == "" {
		return "", apierrors.NewConfigurationError(
			"api_key",
			"GEMINI_API_KEY is not set (export it or run 'cookieschat config set api_key <key>')",
			apierrors.ErrMissingAPIKey,
		)
	}
	return key, nil
}

// MaskAPIKey hides all but the last four characters of key
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// setters maps `config set` keys onto config fields
var setters = map[string]func(*Config, string) error{
	"api_key":               func(c *Config, v string) error { c.APIKey = v; return nil },
	"model":                 func(c *Config, v string) error { c.Model = v; return nil },
	"backend":               setBackend,
	"fallback_message":      func(c *Config, v string) error { c.FallbackMessage = v; return nil },
	"log_level":             func(c *Config, v string) error { c.LogLevel = v; return nil },
	"tui_theme":             func(c *Config, v string) error { c.TUITheme = v; return nil },
	"markdown.style":        func(c *Config, v string) error { c.Markdown.Style = v; return nil },
	"markdown.enable_emoji": boolSetter(func(c *Config, b bool) { c.Markdown.EnableEmoji = b }),
	"server.addr":           func(c *Config, v string) error { c.Server.Addr = v; return nil },
	"metrics.enabled":       boolSetter(func(c *Config, b bool) { c.Metrics.Enabled = b }),
	"metrics.addr":          func(c *Config, v string) error { c.Metrics.Addr = v; return nil },
	"copy_to_clipboard":     boolSetter(func(c *Config, b bool) { c.CopyToClipboard = b }),
}

func setBackend(c *Config, v string) error {
	if v != BackendREST && v != BackendSDK {
		return fmt.Errorf("backend must be %q or %q", BackendREST, BackendSDK)
	}
	c.Backend = v
	return nil
}

func boolSetter(set func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		set(c, b)
		return nil
	}
}

// Set updates a single setting by its dotted key
func Set(cfg *Config, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (available: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	return set(cfg, value)
}

// SettableKeys returns the keys accepted by Set, sorted
func SettableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AvailableBackends returns the backend names
func AvailableBackends() []string {
	return []string{BackendREST, BackendSDK}
}
