package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Commands.OpenTag != "<cmd>" || cfg.Commands.CloseTag != "</cmd>" {
			t.Fatalf("unexpected tags: %+v", cfg.Commands)
		}
		if cfg.Debounce != 250*time.Millisecond {
			t.Fatalf("expected 250ms debounce, got %v", cfg.Debounce)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: memory://\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Book != "test" {
			t.Fatalf("expected book to default to project, got %q", cfg.Book)
		}
		if cfg.Commands.OpenTag != DefaultOpenTag || cfg.Locator.EntryName != DefaultLocator {
			t.Fatalf("expected defaults, got %+v", cfg)
		}
		if cfg.Debounce != DefaultDebounce {
			t.Fatalf("expected default debounce, got %v", cfg.Debounce)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("WORLDMAP_DSN", "sqlite://:memory:")
		t.Setenv("WORLDMAP_BOOK", "other")
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: memory://\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Storage.DSN != "sqlite://:memory:" || cfg.Book != "other" {
			t.Fatalf("expected env overrides, got %+v", cfg)
		}
	})

	t.Run("tracing from env", func(t *testing.T) {
		t.Setenv("WORLDMAP_TRACING", "true")
		t.Setenv("WORLDMAP_OTEL_ENDPOINT", "http://localhost:4318/v1/traces")
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: memory://\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "http://localhost:4318/v1/traces" {
			t.Fatalf("expected tracing from env, got %+v", cfg.Tracing)
		}
	})

	t.Run("tracing without endpoint", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: memory://\ntracing:\n  enabled: true\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nstorage:\n  dsn: memory://\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\nstorage:\n  dsn: memory://\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("identical tags", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: memory://\ncommands:\n  open_tag: '#'\n  close_tag: '#'\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("locator name collides with nodes", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: memory://\nlocator:\n  entry_name: '[MapNode:locator]'\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
