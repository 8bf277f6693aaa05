// Package config handles configuration for geminichat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/geminichat/internal/models"
)

// Environment variables that override the config file
const (
	EnvAPIKey   = "GEMINI_API_KEY"
	EnvModel    = "GEMINICHAT_MODEL"
	EnvEndpoint = "GEMINICHAT_ENDPOINT"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const configDirName = ".geminichat"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Enabled          bool `json:"enabled"`            // Render completed answers as markdown
	EnableEmoji      bool `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool `json:"inline_table_links"` // Render links inline in tables
}

// StorageConfig selects where history and theme are kept
type StorageConfig struct {
	Backend string `json:"backend"`       // "file", "sqlite" or "memory"
	Dir     string `json:"dir,omitempty"` // Defaults to the config directory
}

// Config represents the user configuration
type Config struct {
	APIKey   string `json:"api_key,omitempty"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
	// TimeoutSeconds bounds a single generateContent request.
	TimeoutSeconds int `json:"timeout_seconds"`
	// TypingIntervalMS is the delay between revealed words.
	TypingIntervalMS int `json:"typing_interval_ms"`
	// LoadingDelayMS is the pause between posting the user message and
	// showing the loading placeholder.
	LoadingDelayMS int `json:"loading_delay_ms"`
	// RequestDelayMS is the pause between the placeholder and the request.
	RequestDelayMS int            `json:"request_delay_ms"`
	Storage        StorageConfig  `json:"storage"`
	Markdown       MarkdownConfig `json:"markdown"`
	LogFile        string         `json:"log_file,omitempty"`
	Verbose        bool           `json:"verbose"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Enabled:          true,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Model:            models.DefaultModel.Name,
		Endpoint:         models.EndpointBase,
		TimeoutSeconds:   300,
		TypingIntervalMS: 75,
		LoadingDelayMS:   500,
		RequestDelayMS:   100,
		Storage:          StorageConfig{Backend: BackendFile},
		Markdown:         DefaultMarkdownConfig(),
	}
}

// Timeout returns the request timeout
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TypingInterval returns the delay between revealed words
func (c Config) TypingInterval() time.Duration {
	return millis(c.TypingIntervalMS, 75)
}

// LoadingDelay returns the delay before the loading placeholder appears
func (c Config) LoadingDelay() time.Duration {
	return millis(c.LoadingDelayMS, 500)
}

// RequestDelay returns the delay between the placeholder and the request
func (c Config) RequestDelay() time.Duration {
	return millis(c.RequestDelayMS, 100)
}

func millis(v, def int) time.Duration {
	if v < 0 {
		v = def
	}
	return time.Duration(v) * time.Millisecond
}

// Validate checks the fields a request needs
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("endpoint must be an http(s) URL, got %q", c.Endpoint)
	}
	switch c.Storage.Backend {
	case "", BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// ApplyEnv overrides fields from the environment
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		c.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		c.Endpoint = strings.TrimRight(v, "/")
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the API key and chat history
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

// GetStorageDir returns the storage directory from config, creating it if necessary
func GetStorageDir(cfg Config) (string, error) {
	dir := cfg.Storage.Dir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = configDir
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	return dir, nil
}

// GetLogPath returns the log file path from config
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "geminichat.log"), nil
}

// LoadConfig loads the configuration from disk and applies env overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnv()
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = DefaultConfig()
		cfg.ApplyEnv()
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnv()
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

	// 0o600: the file may carry the API key
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		if len(c.APIKey) > 8 {
			c.APIKey = c.APIKey[:4] + strings.Repeat("*", len(c.APIKey)-8) + c.APIKey[len(c.APIKey)-4:]
		} else {
			c.APIKey = strings.Repeat("*", len(c.APIKey))
		}
	}
	return c
}

// AvailableModels returns a list of available model names
func AvailableModels() []string {
	names := make([]string, 0, len(models.AllModels()))
	for _, m := range models.AllModels() {
		names = append(names, m.Name)
	}
	return names
}
