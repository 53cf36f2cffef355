package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the searctl runtime configuration.
type Config struct {
	LogLevel        string
	OutputFormat    string
	CaptureManifest string
	BatchLimit      int
	// KeymapDir overrides the embedded key tables when set.
	KeymapDir string
	Metrics   bool
}

func Default() Config {
	return Config{
		LogLevel:     "info",
		OutputFormat: "json",
		BatchLimit:   4,
	}
}

var outputFormats = map[string]bool{"json": true, "yaml": true, "cbor": true}

var logLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

func Validate(cfg Config) error {
	if !logLevels[strings.ToLower(strings.TrimSpace(cfg.LogLevel))] {
		return fmt.Errorf("config: unknown log_level %q", cfg.LogLevel)
	}
	if !outputFormats[strings.ToLower(strings.TrimSpace(cfg.OutputFormat))] {
		return fmt.Errorf("config: unknown output_format %q (expected json, yaml or cbor)", cfg.OutputFormat)
	}
	if cfg.BatchLimit < 1 {
		return fmt.Errorf("config: batch_limit must be at least 1")
	}
	if dir := strings.TrimSpace(cfg.KeymapDir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("config: keymap_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: keymap_dir %s is not a directory", dir)
		}
	}
	return nil
}

// RequestConfig is one request of a batch file.
type RequestConfig struct {
	Operation   string `toml:"operation"`
	AdminType   string `toml:"admin_type"`
	ProfileName string `toml:"profile_name"`
	ClassName   string `toml:"class_name"`
	Group       string `toml:"group"`
	Volume      string `toml:"volume"`
	Generic     bool   `toml:"generic"`
	Filter      string `toml:"resource_filter"`
}

// BatchConfig is a list of requests run together by searctl replay.
type BatchConfig struct {
	Limit    int             `toml:"limit"`
	Requests []RequestConfig `toml:"request"`
}

func LoadBatchConfig(path string) (BatchConfig, error) {
	var cfg BatchConfig
	if err := loadToml(path, &cfg); err != nil {
		return BatchConfig{}, err
	}
	if err := ValidateBatchConfig(cfg); err != nil {
		return BatchConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateBatchConfig(cfg BatchConfig) error {
	if cfg.Limit < 0 {
		return fmt.Errorf("batch config limit must not be negative")
	}
	if len(cfg.Requests) == 0 {
		return fmt.Errorf("batch config has no requests")
	}
	for i, req := range cfg.Requests {
		if strings.TrimSpace(req.AdminType) == "" {
			return fmt.Errorf("request[%d] invalid: admin_type is required", i)
		}
	}
	return nil
}
