package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOpenTag   = "<command>"
	DefaultCloseTag  = "</command>"
	DefaultLocator   = "[MapLocator]"
	DefaultDebounce  = 300 * time.Millisecond
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Book     string         `yaml:"book" env:"WORLDMAP_BOOK"`
	Storage  StorageConfig  `yaml:"storage"`
	Commands CommandsConfig `yaml:"commands"`
	Locator  LocatorConfig  `yaml:"locator"`
	Debounce time.Duration  `yaml:"debounce" env:"WORLDMAP_DEBOUNCE"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type StorageConfig struct {
	DSN string `yaml:"dsn" env:"WORLDMAP_DSN"`
}

type CommandsConfig struct {
	OpenTag  string `yaml:"open_tag"`
	CloseTag string `yaml:"close_tag"`
}

type LocatorConfig struct {
	EntryName string `yaml:"entry_name"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"WORLDMAP_LOG_LEVEL"`
	Format string `yaml:"format" env:"WORLDMAP_LOG_FORMAT"`
}

// TracingConfig turns on OTLP/HTTP export of dispatch spans.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" env:"WORLDMAP_TRACING"`
	Endpoint string `yaml:"endpoint" env:"WORLDMAP_OTEL_ENDPOINT"`
}

// LoadProjectConfig reads the yaml file at path, applies defaults and
// WORLDMAP_* environment overrides, then validates the result.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: parse env: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Commands.OpenTag == "" {
		cfg.Commands.OpenTag = DefaultOpenTag
	}
	if cfg.Commands.CloseTag == "" {
		cfg.Commands.CloseTag = DefaultCloseTag
	}
	if cfg.Locator.EntryName == "" {
		cfg.Locator.EntryName = DefaultLocator
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Book == "" {
		cfg.Book = cfg.Project
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return fmt.Errorf("storage dsn is required")
	}
	if strings.TrimSpace(cfg.Book) == "" {
		return fmt.Errorf("book name is required")
	}
	if cfg.Commands.OpenTag == cfg.Commands.CloseTag {
		return fmt.Errorf("command open and close tags must differ")
	}
	if strings.HasPrefix(cfg.Locator.EntryName, "[MapNode:") {
		return fmt.Errorf("locator entry name %q collides with node entries", cfg.Locator.EntryName)
	}
	if cfg.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if cfg.Tracing.Enabled && strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		return fmt.Errorf("tracing is enabled but no endpoint is set")
	}
	return nil
}
