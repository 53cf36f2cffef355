package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mainframe-Renewal-Project/sear/internal/config"
	"github.com/Mainframe-Renewal-Project/sear/internal/testutil/testlog"
)

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "tables"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, "searctl.toml")
	content := `
output_format = "yaml"
capture_manifest = "captures/manifest.toml"
keymap_dir = "tables"
metrics = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := config.Default()
	if cfg.LogLevel != def.LogLevel {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
	if cfg.BatchLimit != def.BatchLimit {
		t.Fatalf("unexpected batch limit: %d", cfg.BatchLimit)
	}
	if cfg.OutputFormat != "yaml" {
		t.Fatalf("unexpected output format: %q", cfg.OutputFormat)
	}
	if cfg.CaptureManifest != filepath.Join(dir, "captures", "manifest.toml") {
		t.Fatalf("unexpected manifest path: %q", cfg.CaptureManifest)
	}
	if cfg.KeymapDir != filepath.Join(dir, "tables") {
		t.Fatalf("unexpected keymap dir: %q", cfg.KeymapDir)
	}
	if !cfg.Metrics {
		t.Fatalf("expected metrics enabled")
	}
}

func TestLoadConfigEmptyPathIsDefault(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg != config.Default() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "searctl.toml")
	if err := os.WriteFile(path, []byte("batch_limit = 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected batch_limit error")
	}
}

func TestConfigTemplateRoundTrip(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "etc", "searctl.toml")
	if err := writeConfigTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := loadConfig(path); err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if err := writeConfigTemplate(path, false); !errors.Is(err, errConfigExists) {
		t.Fatalf("expected errConfigExists, got %v", err)
	}
	if err := writeConfigTemplate(path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
}
