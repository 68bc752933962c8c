package config

const (
	defaultStorageRoot      = "data"
	defaultMissLookbackDays = 1

	defaultAPIListen = ":8080"

	defaultEmbeddingProvider = "ollama"
	defaultEmbeddingTarget   = "http://localhost:11434"
	defaultEmbeddingModel    = "all-minilm"

	defaultCompletionProvider = "ollama"
	defaultCompletionTarget   = "http://localhost:11434"
	defaultCompletionModel    = "llama3.2"

	defaultKeepRecent      = 15
	defaultSummarizeWindow = 14

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "muninn.turns"

	defaultLogLevel = "info"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Root:             defaultStorageRoot,
			MissLookbackDays: defaultMissLookbackDays,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultEmbeddingProvider,
			Target:   defaultEmbeddingTarget,
			Model:    defaultEmbeddingModel,
			Cache:    true,
		},
		Completion: CompletionConfig{
			Provider: defaultCompletionProvider,
			Target:   defaultCompletionTarget,
			Model:    defaultCompletionModel,
		},
		Compaction: CompactionConfig{
			KeepRecent:      defaultKeepRecent,
			SummarizeWindow: defaultSummarizeWindow,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Pretty: true,
		},
	}
}
