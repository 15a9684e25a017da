// Package config provides configuration loading and structs for the Neural Vault server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/neuralvault/internal/ranking"
)

// Chat providers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// Environment overrides.
const (
	EnvNotesDir  = "NEURALVAULT_NOTES_DIR"
	EnvPort      = "NEURALVAULT_PORT"
	EnvChatModel = "NEURALVAULT_CHAT_MODEL"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool                    `yaml:"debug"`
	Server    ServerConfig            `yaml:"server"`
	Notes     NotesConfig             `yaml:"notes"`
	Search    SearchConfig            `yaml:"search"`
	Watch     WatchConfig             `yaml:"watch"`
	Chat      ChatConfig              `yaml:"chat"`
	Retrieval ranking.RetrievalConfig `yaml:"retrieval"`
	Importer  ImporterConfig          `yaml:"importer"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// NotesConfig says where notes live.
type NotesConfig struct {
	Dir string `yaml:"dir"`
	// Extension for new notes: .mdx or .md.
	Extension string `yaml:"extension"`
}

// SearchConfig holds full-text search settings. An empty IndexPath keeps
// the index in memory; it is rebuilt from the notes on every start anyway.
type SearchConfig struct {
	IndexPath    string  `yaml:"index_path"`
	DefaultLimit int     `yaml:"default_limit"`
	MaxLimit     int     `yaml:"max_limit"`
	TitleBoost   float64 `yaml:"title_boost"`
	Fuzziness    int     `yaml:"fuzziness"`
	// Suggest enables "did you mean" rewrites for unknown query words.
	Suggest      *bool   `yaml:"suggest"`
}

// SuggestOrDefault reports whether search returns spelling suggestions;
// defaults to true when unset.
func (s *SearchConfig) SuggestOrDefault() bool {
	return s.Suggest == nil || *s.Suggest
}

// WatchConfig holds notes directory watch settings.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled"`
	DebounceMS int   `yaml:"debounce_ms"`
}

// EnabledOrDefault returns whether to watch the notes directory; defaults to true when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Debounce returns the debounce as a duration.
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// ChatConfig selects and tunes the upstream chat model.
type ChatConfig struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	MaxTokens         int     `yaml:"max_tokens"`
	HistoryLimit      int     `yaml:"history_limit"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// APIKeyEnv returns the environment variable holding the provider's key.
func (c *ChatConfig) APIKeyEnv() string {
	switch c.Provider {
	case ProviderClaude:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// ImporterConfig shapes the notes written by import-commits.
type ImporterConfig struct {
	SlugPrefix  string   `yaml:"slug_prefix"`
	TitlePrefix string   `yaml:"title_prefix"`
	Tags        []string `yaml:"tags"`
	Days        int      `yaml:"days"`
}

// Default returns a config with every default applied, relative paths
// resolved against the working directory.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Notes.Dir = expandPath(cfg.Notes.Dir, ".")
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Notes.Dir = expandPath(cfg.Notes.Dir, configDir)
	if cfg.Search.IndexPath != "" {
		cfg.Search.IndexPath = expandPath(cfg.Search.IndexPath, configDir)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, or returns Default when path is empty or the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none)
// into the process environment. Missing files are ignored and variables
// already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvNotesDir)); v != "" {
		cfg.Notes.Dir = expandPath(v, ".")
	}
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v := strings.TrimSpace(getenv(EnvChatModel)); v != "" {
		cfg.Chat.Model = v
	}
	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = strings.TrimSpace(getenv(cfg.Chat.APIKeyEnv()))
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Notes.Dir == "" {
		return fmt.Errorf("notes.dir is required")
	}
	switch c.Notes.Extension {
	case ".md", ".mdx":
	default:
		return fmt.Errorf("notes.extension must be .md or .mdx, got %q", c.Notes.Extension)
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search limits invalid: default_limit=%d max_limit=%d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Search.Fuzziness < 0 || c.Search.Fuzziness > 2 {
		return fmt.Errorf("search.fuzziness must be 0..2, got %d", c.Search.Fuzziness)
	}
	switch c.Chat.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
	default:
		return fmt.Errorf("unknown chat.provider %q", c.Chat.Provider)
	}
	if c.Chat.MaxTokens <= 0 || c.Chat.HistoryLimit <= 0 || c.Chat.Burst <= 0 || c.Chat.RequestsPerSecond <= 0 {
		return fmt.Errorf("chat limits must be positive")
	}
	if c.Importer.Days <= 0 {
		return fmt.Errorf("importer.days must be positive, got %d", c.Importer.Days)
	}
	return c.Retrieval.Validate()
}

// expandPath converts a path to absolute. "~/" is the home directory; other
// relative paths are relative to baseDir.
func expandPath(path string, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
		return path
	}
	joined := filepath.Join(baseDir, path)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}
