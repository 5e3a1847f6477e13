package config

import (
	"errors"
	"time"
)

// DefaultMarker is the file name whose presence marks a directory as a page.
const DefaultMarker = "router.ts"

// DefaultDebounce is the quiet period before a regeneration runs.
const DefaultDebounce = 300 * time.Millisecond

// DefaultOutputFile is used by `pagegen init` when no output is given.
const DefaultOutputFile = "src/pages.json"

// Sentinel validation errors.
var (
	ErrMissingInputDir   = errors.New("config: inputDir is required")
	ErrMissingOutputFile = errors.New("config: outputFile is required")
)

// Config is the root configuration structure.
type Config struct {
	Pages    PagesConfig    `json:"pages"`
	UI       UIConfig       `json:"ui"`
	Features FeaturesConfig `json:"features"`
}

// PagesConfig configures the page manifest generator.
type PagesConfig struct {
	InputDir   string        `json:"inputDir"`   // root directory to scan
	OutputFile string        `json:"outputFile"` // destination path for the manifest JSON
	Marker     string        `json:"marker"`     // marker file name, "router.ts" default
	Debounce   time.Duration `json:"debounce"`
}

// FeaturesConfig holds feature flag settings.
type FeaturesConfig struct {
	Flags map[string]bool `json:"flags"`
}

// UIConfig configures terminal output.
type UIConfig struct {
	// Theme selects the color palette ("default" or "light").
	Theme string `json:"theme"`
	// Color disables styling when false, even on a terminal.
	Color bool `json:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Pages: PagesConfig{
			Marker:   DefaultMarker,
			Debounce: DefaultDebounce,
		},
		UI: UIConfig{
			Theme: "default",
			Color: true,
		},
		Features: FeaturesConfig{
			Flags: make(map[string]bool),
		},
	}
}

// Validate checks the configuration structurally and fills in defaults for
// optional values. Values are not range-checked.
func (c *Config) Validate() error {
	if c.Pages.Marker == "" {
		c.Pages.Marker = DefaultMarker
	}
	if c.Pages.Debounce <= 0 {
		c.Pages.Debounce = DefaultDebounce
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "default"
	}
	if c.Features.Flags == nil {
		c.Features.Flags = make(map[string]bool)
	}
	if c.Pages.InputDir == "" {
		return ErrMissingInputDir
	}
	if c.Pages.OutputFile == "" {
		return ErrMissingOutputFile
	}
	return nil
}
