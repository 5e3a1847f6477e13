package watch

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Matcher decides whether a path is a marker file under root, i.e. whether
// it matches <root>/**/<marker>.
type Matcher struct {
	root    string
	pattern string // root-relative, slash separated
}

// NewMatcher creates a Matcher for marker files anywhere below root.
func NewMatcher(root, marker string) *Matcher {
	return &Matcher{
		root:    filepath.Clean(root),
		pattern: "**/" + marker,
	}
}

// Pattern returns the full glob, for display.
func (m *Matcher) Pattern() string {
	return filepath.ToSlash(m.root) + "/" + m.pattern
}

// Match reports whether path is a marker file below root.
func (m *Matcher) Match(path string) bool {
	rel, ok := m.rel(path)
	if !ok {
		return false
	}
	matched, err := doublestar.Match(m.pattern, rel)
	return err == nil && matched
}

func (m *Matcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(m.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
