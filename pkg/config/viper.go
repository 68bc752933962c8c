package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads configPath (if any),
// and binds environment variables with the MUNINN_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MUNINN_STORAGE_ROOT, MUNINN_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("$HOME", ".muninn"))
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("MUNINN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// ConfigFromViper materializes a Config from the viper precedence chain.
func ConfigFromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Root:             v.GetString("storage.root"),
			MissLookbackDays: v.GetInt("storage.miss_lookback_days"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Embedding: EmbeddingConfig{
			Provider: v.GetString("embedding.provider"),
			Target:   v.GetString("embedding.target"),
			Model:    v.GetString("embedding.model"),
			APIKey:   v.GetString("embedding.api_key"),
			Cache:    v.GetBool("embedding.cache"),
		},
		Completion: CompletionConfig{
			Provider: v.GetString("completion.provider"),
			Target:   v.GetString("completion.target"),
			Model:    v.GetString("completion.model"),
			APIKey:   v.GetString("completion.api_key"),
		},
		Compaction: CompactionConfig{
			KeepRecent:      v.GetInt("compaction.keep_recent"),
			SummarizeWindow: v.GetInt("compaction.summarize_window"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetStringSlice("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
			JSON:   v.GetBool("log.json"),
		},
	}

	applyDefaults(cfg)

	return cfg
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.root", d.Storage.Root)
	v.SetDefault("storage.miss_lookback_days", d.Storage.MissLookbackDays)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.cache", d.Embedding.Cache)

	// Completion
	v.SetDefault("completion.provider", d.Completion.Provider)
	v.SetDefault("completion.target", d.Completion.Target)
	v.SetDefault("completion.model", d.Completion.Model)
	v.SetDefault("completion.api_key", d.Completion.APIKey)

	// Compaction
	v.SetDefault("compaction.keep_recent", d.Compaction.KeepRecent)
	v.SetDefault("compaction.summarize_window", d.Compaction.SummarizeWindow)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Log
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
	v.SetDefault("log.json", d.Log.JSON)
}
