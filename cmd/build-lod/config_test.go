package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSONConfigOverridesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"builder":"tiny-lod","base":1.6,"maxSh":1}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Config{Builder: "bhatt-lod", Base: 1.75, MaxSH: -1}
	if err := parseJSONConfig(&cfg, path); err != nil {
		t.Fatalf("parseJSONConfig failed: %v", err)
	}
	if cfg.Builder != "tiny-lod" {
		t.Fatalf("expected builder overridden to tiny-lod, got %q", cfg.Builder)
	}
	if cfg.Base != 1.6 {
		t.Fatalf("expected base overridden to 1.6, got %v", cfg.Base)
	}
	if cfg.MaxSH != 1 {
		t.Fatalf("expected maxSh overridden to 1, got %d", cfg.MaxSH)
	}
}

func TestParseJSONConfigMissingFileErrors(t *testing.T) {
	cfg := Config{}
	if err := parseJSONConfig(&cfg, "/nonexistent/path/config.json"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
