// Package features gates optional manifest behavior behind named flags,
// resolved from CLI overrides, the config file, and compiled-in defaults.
package features
