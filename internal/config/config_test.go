package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
  request_timeout: 15s
notes:
  dir: "./vault"
chat:
  provider: claude
retrieval:
  chat_top_n: 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 15*time.Second {
		t.Errorf("request_timeout = %v", cfg.Server.RequestTimeout)
	}
	if want := filepath.Join(filepath.Dir(path), "vault"); cfg.Notes.Dir != want {
		t.Errorf("notes.dir = %s, want %s", cfg.Notes.Dir, want)
	}
	if cfg.Chat.Model != DefaultModel(ProviderClaude) {
		t.Errorf("chat model should default per provider, got %q", cfg.Chat.Model)
	}
	if cfg.Retrieval.ChatTopN != 4 || cfg.Retrieval.VaultTopN != 5 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("bad yaml should fail")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || !filepath.IsAbs(cfg.Notes.Dir) {
		t.Errorf("default config = %+v", cfg)
	}
	cfg, err = LoadOrDefault("")
	if err != nil || cfg == nil {
		t.Fatalf("LoadOrDefault(\"\") = %v, %v", cfg, err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Notes.Extension != ".mdx" {
		t.Errorf("default extension: got %s", cfg.Notes.Extension)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxLimit != 100 {
		t.Errorf("search limits: %+v", cfg.Search)
	}
	if cfg.Chat.Provider != ProviderOpenAI || cfg.Chat.Model != "gpt-4o-mini" {
		t.Errorf("chat: %+v", cfg.Chat)
	}
	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("history limit: got %d", cfg.Chat.HistoryLimit)
	}
	if cfg.Retrieval.TitleWeight != 3 || cfg.Retrieval.ContentOverlapCap != 25 {
		t.Errorf("retrieval defaults: %+v", cfg.Retrieval)
	}
	if len(cfg.Importer.Tags) != 3 || cfg.Importer.Days != 7 {
		t.Errorf("importer defaults: %+v", cfg.Importer)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSearchConfig_SuggestOrDefault(t *testing.T) {
	off := false
	if !(&SearchConfig{}).SuggestOrDefault() {
		t.Error("unset suggest should default to true")
	}
	if (&SearchConfig{Suggest: &off}).SuggestOrDefault() {
		t.Error("suggest: false should disable suggestions")
	}
}

func TestWatchConfig_EnabledOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.EnabledOrDefault(); !got {
			t.Errorf("EnabledOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Enabled: &f}
		if got := w.EnabledOrDefault(); got {
			t.Errorf("EnabledOrDefault() = %v, want false", got)
		}
	})
	w := &WatchConfig{DebounceMS: 250}
	if w.Debounce() != 250*time.Millisecond {
		t.Errorf("Debounce = %v", w.Debounce())
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvNotesDir:         "/srv/notes",
		EnvPort:             "9191",
		EnvChatModel:        "gpt-4.1-mini",
		"OPENAI_API_KEY":    "sk-open",
		"ANTHROPIC_API_KEY": "sk-ant",
	}
	getenv := func(k string) string { return env[k] }

	cfg := Default()
	if err := ApplyEnv(cfg, getenv); err != nil {
		t.Fatal(err)
	}
	if cfg.Notes.Dir != "/srv/notes" || cfg.Server.Port != 9191 || cfg.Chat.Model != "gpt-4.1-mini" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Chat.APIKey != "sk-open" {
		t.Errorf("openai key = %q", cfg.Chat.APIKey)
	}

	cfg = Default()
	cfg.Chat.Provider = ProviderClaude
	if err := ApplyEnv(cfg, getenv); err != nil {
		t.Fatal(err)
	}
	if cfg.Chat.APIKey != "sk-ant" {
		t.Errorf("claude key = %q", cfg.Chat.APIKey)
	}

	cfg = Default()
	cfg.Chat.APIKey = "from-file"
	_ = ApplyEnv(cfg, getenv)
	if cfg.Chat.APIKey != "from-file" {
		t.Errorf("configured key should win, got %q", cfg.Chat.APIKey)
	}

	env[EnvPort] = "eighty"
	if err := ApplyEnv(Default(), getenv); err == nil {
		t.Error("non-numeric port should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"extension", func(c *Config) { c.Notes.Extension = ".txt" }, "notes.extension"},
		{"limits", func(c *Config) { c.Search.MaxLimit = 5 }, "search limits"},
		{"fuzziness", func(c *Config) { c.Search.Fuzziness = 3 }, "fuzziness"},
		{"provider", func(c *Config) { c.Chat.Provider = "llama" }, "chat.provider"},
		{"retrieval", func(c *Config) { c.Retrieval.ChatTopN = -1 }, "chat_top_n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/notes", "/etc"); got != filepath.Join(home, "notes") {
		t.Errorf("~/notes = %s", got)
	}
	if got := expandPath("/abs", "/etc"); got != "/abs" {
		t.Errorf("/abs = %s", got)
	}
	if got := expandPath("rel/dir", "/etc"); got != "/etc/rel/dir" {
		t.Errorf("rel/dir = %s", got)
	}
	if got := expandPath("", "/etc"); got != "" {
		t.Errorf("empty = %s", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NEURALVAULT_TEST_DOTENV=loaded\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NEURALVAULT_TEST_DOTENV", "")
	os.Unsetenv("NEURALVAULT_TEST_DOTENV")
	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("NEURALVAULT_TEST_DOTENV"); got != "loaded" {
		t.Errorf("dotenv value = %q", got)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9090
	cfg.Server.RequestTimeout = 5 * time.Second
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Server.RequestTimeout != 5*time.Second {
		t.Errorf("loaded server: %+v", loaded.Server)
	}
	if loaded.Notes.Dir != cfg.Notes.Dir {
		t.Errorf("notes dir round trip: %s vs %s", loaded.Notes.Dir, cfg.Notes.Dir)
	}
}
