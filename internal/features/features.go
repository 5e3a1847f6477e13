package features

import (
	"errors"
	"sort"
	"sync"

	"github.com/wilbur182/pagegen/internal/config"
)

// ErrNotInitialized is returned when the feature manager is not initialized.
var ErrNotInitialized = errors.New("feature manager not initialized")

// Feature represents a known feature flag with its default value.
type Feature struct {
	Name        string
	Default     bool
	Description string
}

// Known feature flags.
var (
	// RelativePaths writes manifest entries relative to the input directory.
	RelativePaths = Feature{
		Name:        "relative_paths",
		Default:     false,
		Description: "Write manifest paths relative to the input directory",
	}

	// AtomicWrite writes the manifest through a temp file and rename.
	AtomicWrite = Feature{
		Name:        "atomic_write",
		Default:     true,
		Description: "Replace the manifest atomically via temp file and rename",
	}
)

var allFeatures = []Feature{
	RelativePaths,
	AtomicWrite,
}

var defaultValues = buildDefaultMap()

func buildDefaultMap() map[string]bool {
	m := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		m[f.Name] = f.Default
	}
	return m
}

// IsKnownFeature returns true if the feature name is registered.
func IsKnownFeature(name string) bool {
	_, ok := defaultValues[name]
	return ok
}

// Manager handles feature flag state.
type Manager struct {
	mu        sync.RWMutex
	cfg       *config.Config
	overrides map[string]bool // CLI overrides take precedence
}

var globalManager *Manager

// Init initializes the feature flag manager with the given config.
// Should be called once at startup after config is loaded.
func Init(cfg *config.Config) {
	globalManager = &Manager{
		cfg:       cfg,
		overrides: make(map[string]bool),
	}
}

// SetOverride sets a CLI override for a feature flag.
func SetOverride(name string, enabled bool) {
	if globalManager == nil {
		return
	}
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.overrides[name] = enabled
}

// IsEnabled checks if a feature is enabled.
// Priority: CLI override > config > default.
func IsEnabled(name string) bool {
	if globalManager == nil {
		return defaultValues[name]
	}

	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	return isEnabledLocked(name)
}

// isEnabledLocked resolves a flag. Caller must hold the read lock.
func isEnabledLocked(name string) bool {
	if enabled, ok := globalManager.overrides[name]; ok {
		return enabled
	}
	if globalManager.cfg != nil && globalManager.cfg.Features.Flags != nil {
		if enabled, ok := globalManager.cfg.Features.Flags[name]; ok {
			return enabled
		}
	}
	return defaultValues[name]
}

// List returns all known features with their current enabled state.
func List() map[string]bool {
	result := make(map[string]bool, len(allFeatures))
	if globalManager == nil {
		for _, f := range allFeatures {
			result[f.Name] = f.Default
		}
		return result
	}

	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	for _, f := range allFeatures {
		result[f.Name] = isEnabledLocked(f.Name)
	}
	return result
}

// ListAll returns all known features with metadata, sorted by name.
func ListAll() []Feature {
	result := make([]Feature, len(allFeatures))
	copy(result, allFeatures)
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// SetEnabled updates a feature flag in the config file at path and in memory.
func SetEnabled(path, name string, enabled bool) error {
	if globalManager == nil {
		return ErrNotInitialized
	}

	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()

	// Reload from disk to avoid overwriting changes made since startup.
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	cfg.Features.Flags[name] = enabled

	if globalManager.cfg.Features.Flags == nil {
		globalManager.cfg.Features.Flags = make(map[string]bool)
	}
	globalManager.cfg.Features.Flags[name] = enabled

	return config.SaveTo(path, cfg)
}
