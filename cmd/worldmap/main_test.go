package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"worldmap/internal/config"
	"worldmap/internal/store/memory"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	db, err := openStore(ctx, "memory://")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := db.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", db)
	}

	if _, err := openStore(ctx, "mysql://nope"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestInitThenApply(t *testing.T) {
	dir := t.TempDir()
	configPath = filepath.Join(dir, "worldmap.yaml")
	t.Cleanup(func() { configPath = "worldmap.yaml" })

	if err := runInit("testworld", "sqlite://"+filepath.Join(dir, "world.db")); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := runInit("testworld", "memory://"); err == nil {
		t.Fatalf("expected second init to fail")
	}

	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		t.Fatalf("loading generated config: %v", err)
	}
	if cfg.Book != "testworld" || cfg.Locator.EntryName != "[MapLocator]" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	cmd := applyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`<command>[Map.AddOrUpdate("town_a","Town A")][Map.MoveTo("town_a")]</command>`))
	if err := runApply(cmd, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.Contains(out.String(), "Player is at town_a.") {
		t.Fatalf("unexpected apply output: %q", out.String())
	}
}
