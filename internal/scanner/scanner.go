// Package scanner finds page directories by the presence of a marker file.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
)

// Scan lists the immediate entries of rootDir and returns rootDir/entry/marker
// for every entry where that file exists, in directory-listing order.
// The result is never nil.
func Scan(rootDir, marker string) ([]string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", rootDir, err)
	}

	pages := make([]string, 0, len(entries))
	for _, e := range entries {
		candidate := filepath.Join(rootDir, e.Name(), marker)
		if _, err := os.Stat(candidate); err == nil {
			pages = append(pages, candidate)
		}
	}
	return pages, nil
}

// Relativize rewrites paths relative to rootDir using forward slashes.
// Paths outside rootDir are kept as-is.
func Relativize(rootDir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(rootDir, p)
		if err != nil {
			out[i] = p
			continue
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}
