package config

// Config represents the persistent muninn configuration stored as
// config.toml. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Storage    StorageConfig    `toml:"storage"`
	API        APIConfig        `toml:"api"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Completion CompletionConfig `toml:"completion"`
	Compaction CompactionConfig `toml:"compaction"`
	Events     EventsConfig     `toml:"events"`
	Log        LogConfig        `toml:"log"`
}

// StorageConfig holds message and attribute store settings.
type StorageConfig struct {
	// Root is the directory user shards live under.
	Root string `toml:"root,omitempty"`

	// MissLookbackDays is how many recent day shards a point lookup
	// consults on an index miss.
	MissLookbackDays int `toml:"miss_lookback_days,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	Cache    bool   `toml:"cache,omitempty"`
}

// CompletionConfig holds completion provider settings.
type CompletionConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// CompactionConfig holds context compaction thresholds.
type CompactionConfig struct {
	KeepRecent      int `toml:"keep_recent,omitempty"`
	SummarizeWindow int `toml:"summarize_window,omitempty"`
}

// EventsConfig holds event stream publisher settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `toml:"level,omitempty"`
	Pretty bool   `toml:"pretty,omitempty"`
	JSON   bool   `toml:"json,omitempty"`
}
