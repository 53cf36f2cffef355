package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Mainframe-Renewal-Project/sear/internal/config"
)

// searctl.toml key mapping to runtime settings.
type fileConfig struct {
	LogLevel        string `toml:"log_level"`
	OutputFormat    string `toml:"output_format"`
	CaptureManifest string `toml:"capture_manifest"`
	BatchLimit      int    `toml:"batch_limit"`
	KeymapDir       string `toml:"keymap_dir"`
	Metrics         bool   `toml:"metrics"`
}

// searctl loader for TOML config with default overlay. Relative paths are
// resolved against the config file's directory.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Config{}, fmt.Errorf("load searctl config: %w", err)
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("output_format") {
		cfg.OutputFormat = strings.TrimSpace(raw.OutputFormat)
	}
	if meta.IsDefined("capture_manifest") {
		cfg.CaptureManifest = resolveRelative(path, raw.CaptureManifest)
	}
	if meta.IsDefined("batch_limit") {
		cfg.BatchLimit = raw.BatchLimit
	}
	if meta.IsDefined("keymap_dir") {
		cfg.KeymapDir = resolveRelative(path, raw.KeymapDir)
	}
	if meta.IsDefined("metrics") {
		cfg.Metrics = raw.Metrics
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("load searctl config: %w", err)
	}
	return cfg, nil
}

func resolveRelative(configPath, value string) string {
	value = strings.TrimSpace(value)
	if value == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(filepath.Dir(configPath), value)
}

const configTemplate = `# searctl configuration
log_level = "info"
output_format = "json"   # json | yaml | cbor
batch_limit = 4
metrics = false

# capture_manifest = "captures/manifest.toml"
# keymap_dir = "tables"
`

var errConfigExists = errors.New("config file already exists")

func writeConfigTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s (use --force to overwrite)", errConfigExists, path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, []byte(configTemplate), 0o644)
}
