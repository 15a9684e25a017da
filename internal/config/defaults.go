package config

import "time"

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderClaude:
		return "claude-3-5-haiku-latest"
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return "gpt-4o-mini"
	}
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Notes.Dir == "" {
		cfg.Notes.Dir = "./content/notes"
	}
	if cfg.Notes.Extension == "" {
		cfg.Notes.Extension = ".mdx"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.TitleBoost == 0 {
		cfg.Search.TitleBoost = 3.0
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 300
	}
	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = ProviderOpenAI
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = DefaultModel(cfg.Chat.Provider)
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 1024
	}
	if cfg.Chat.HistoryLimit == 0 {
		cfg.Chat.HistoryLimit = 10
	}
	if cfg.Chat.RequestsPerSecond == 0 {
		cfg.Chat.RequestsPerSecond = 2
	}
	if cfg.Chat.Burst == 0 {
		cfg.Chat.Burst = 4
	}
	cfg.Retrieval.ApplyDefaults()
	if cfg.Importer.SlugPrefix == "" {
		cfg.Importer.SlugPrefix = "neural-vault"
	}
	if cfg.Importer.TitlePrefix == "" {
		cfg.Importer.TitlePrefix = "Neural Vault commits"
	}
	if cfg.Importer.Tags == nil {
		cfg.Importer.Tags = []string{"commits", "git", "neural-vault"}
	}
	if cfg.Importer.Days == 0 {
		cfg.Importer.Days = 7
	}
}
