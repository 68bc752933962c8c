// Package config loads and persists service configuration. Values come
// from, in increasing precedence: built-in defaults, config.toml, MUNINN_
// environment variables, and bound CLI flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	// v0 is the alpha version of the config.
	v0 = 0

	// CurrentV is the currently supported version, points to v0.
	CurrentV = v0
)

// ParseConfigTOML decodes raw TOML into a Config without applying defaults.
func ParseConfigTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads config.toml from path. A missing file yields
// NewDefaultConfig(); fields explicitly set in the file override defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// SaveConfig persists the configuration as TOML at path.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}
	if path == "" {
		return errors.New("cannot save empty config path")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Storage.Root == "" {
		cfg.Storage.Root = defaults.Storage.Root
	}
	if cfg.Storage.MissLookbackDays == 0 {
		cfg.Storage.MissLookbackDays = defaults.Storage.MissLookbackDays
	}

	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = defaults.Embedding.Provider
	}
	if cfg.Embedding.Target == "" {
		cfg.Embedding.Target = defaults.Embedding.Target
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.Embedding.Model
	}

	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = defaults.Completion.Provider
	}
	if cfg.Completion.Target == "" {
		cfg.Completion.Target = defaults.Completion.Target
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = defaults.Completion.Model
	}

	if cfg.Compaction.KeepRecent == 0 {
		cfg.Compaction.KeepRecent = defaults.Compaction.KeepRecent
	}
	if cfg.Compaction.SummarizeWindow == 0 {
		cfg.Compaction.SummarizeWindow = defaults.Compaction.SummarizeWindow
	}

	if cfg.Events.Provider == "" {
		cfg.Events.Provider = defaults.Events.Provider
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = defaults.Events.Topic
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}
