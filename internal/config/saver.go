package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Pages    savePagesConfig `json:"pages"`
	UI       saveUIConfig    `json:"ui"`
	Features FeaturesConfig  `json:"features,omitempty"`
}

type savePagesConfig struct {
	InputDir   string `json:"inputDir,omitempty"`
	OutputFile string `json:"outputFile,omitempty"`
	Marker     string `json:"marker,omitempty"`
	Debounce   string `json:"debounce,omitempty"`
}

type saveUIConfig struct {
	Theme string `json:"theme,omitempty"`
	Color *bool  `json:"color,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Pages: savePagesConfig{
			InputDir:   cfg.Pages.InputDir,
			OutputFile: cfg.Pages.OutputFile,
			Marker:     cfg.Pages.Marker,
			Debounce:   cfg.Pages.Debounce.String(),
		},
		UI: saveUIConfig{
			Theme: cfg.UI.Theme,
			Color: &cfg.UI.Color,
		},
		Features: cfg.Features,
	}
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sc := toSaveConfig(cfg)
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
