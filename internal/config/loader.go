package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// FileName is the config file looked up in the working directory.
const FileName = "pagegen.json"

// Environment overrides, applied after the config file.
const (
	EnvInputDir   = "PAGEGEN_INPUT_DIR"
	EnvOutputFile = "PAGEGEN_OUTPUT_FILE"
	EnvMarker     = "PAGEGEN_MARKER"
	EnvDebounce   = "PAGEGEN_DEBOUNCE"
)

// LoadFrom reads the config at path. A missing file yields the defaults.
// Validation is left to the caller so flags and env can fill required values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var sc saveConfig
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := mergeSaved(cfg, sc); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// mergeSaved copies non-empty values from the on-disk form into cfg.
func mergeSaved(cfg *Config, sc saveConfig) error {
	if sc.Pages.InputDir != "" {
		cfg.Pages.InputDir = sc.Pages.InputDir
	}
	if sc.Pages.OutputFile != "" {
		cfg.Pages.OutputFile = sc.Pages.OutputFile
	}
	if sc.Pages.Marker != "" {
		cfg.Pages.Marker = sc.Pages.Marker
	}
	if sc.Pages.Debounce != "" {
		d, err := time.ParseDuration(sc.Pages.Debounce)
		if err != nil {
			return fmt.Errorf("invalid debounce %q: %w", sc.Pages.Debounce, err)
		}
		cfg.Pages.Debounce = d
	}
	if sc.UI.Theme != "" {
		cfg.UI.Theme = sc.UI.Theme
	}
	if sc.UI.Color != nil {
		cfg.UI.Color = *sc.UI.Color
	}
	for name, enabled := range sc.Features.Flags {
		cfg.Features.Flags[name] = enabled
	}
	return nil
}

// LoadEnv loads a .env file from the working directory (if any) and applies
// PAGEGEN_* overrides to cfg.
func LoadEnv(cfg *Config) error {
	return loadEnvFile(cfg, ".env")
}

func loadEnvFile(cfg *Config, path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvInputDir)); v != "" {
		cfg.Pages.InputDir = v
	}
	if v := strings.TrimSpace(getenv(EnvOutputFile)); v != "" {
		cfg.Pages.OutputFile = v
	}
	if v := strings.TrimSpace(getenv(EnvMarker)); v != "" {
		cfg.Pages.Marker = v
	}
	if v := strings.TrimSpace(getenv(EnvDebounce)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebounce, err)
		}
		cfg.Pages.Debounce = d
	}
	return nil
}
