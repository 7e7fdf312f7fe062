package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigFile parses a config file and leaves unset fields nil.
func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("temperature: 0.5\ntop_k: 10\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := loadConfigFile(path)
	if cfg.Temperature == nil || *cfg.Temperature != 0.5 {
		t.Fatalf("temperature not parsed: %+v", cfg)
	}
	if cfg.TopK == nil || *cfg.TopK != 10 {
		t.Fatalf("top_k not parsed: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level not parsed: %+v", cfg)
	}
	if cfg.TopP != nil || cfg.Seed != nil {
		t.Fatalf("unset fields should stay nil: %+v", cfg)
	}
}

// TestLoadConfigFileMissing yields a zero config for missing or broken
// files.
func TestLoadConfigFileMissing(t *testing.T) {
	cfg := loadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if cfg.Temperature != nil || cfg.LogLevel != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg = loadConfigFile(path)
	if cfg.Temperature != nil {
		t.Fatalf("expected zero config for broken yaml, got %+v", cfg)
	}
}
