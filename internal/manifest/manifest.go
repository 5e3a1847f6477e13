// Package manifest persists the page list as a JSON array and rewrites it
// only when its content actually changes.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// ErrMalformed is returned when the existing manifest is not valid JSON.
var ErrMalformed = errors.New("malformed manifest")

// Writer writes a manifest file, skipping writes whose canonical content
// matches what is already on disk.
type Writer struct {
	path   string
	atomic bool
	stamps *stampCache
}

// Option configures a Writer.
type Option func(*Writer)

// WithAtomic toggles temp-file-and-rename writes. Enabled by default.
func WithAtomic(enabled bool) Option {
	return func(w *Writer) { w.atomic = enabled }
}

// NewWriter creates a Writer for the manifest at path.
func NewWriter(path string, opts ...Option) *Writer {
	w := &Writer{
		path:   path,
		atomic: true,
		stamps: newStampCache(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the manifest file path.
func (w *Writer) Path() string {
	return w.path
}

// Write persists paths if they differ from the current manifest and reports
// whether the file was written. A missing manifest is always created.
func (w *Writer) Write(paths []string) (bool, error) {
	if paths == nil {
		paths = []string{}
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return false, fmt.Errorf("create manifest dir: %w", err)
	}

	prev, exists, err := w.currentDigest()
	if err != nil {
		return false, err
	}

	canonical, err := json.Marshal(paths)
	if err != nil {
		return false, err
	}
	next := xxhash.Sum64(canonical)
	if exists && prev == next {
		return false, nil
	}

	data, err := Encode(paths)
	if err != nil {
		return false, err
	}
	if err := w.writeFile(data); err != nil {
		w.stamps.Delete(w.path)
		return false, fmt.Errorf("write manifest %s: %w", w.path, err)
	}

	if info, err := os.Stat(w.path); err == nil {
		w.stamps.Set(w.path, next, info)
	}
	return true, nil
}

// currentDigest returns the canonical digest of the manifest on disk.
// exists is false when there is no manifest yet.
func (w *Writer) currentDigest() (digest uint64, exists bool, err error) {
	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			w.stamps.Delete(w.path)
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("stat manifest: %w", err)
	}
	if d, ok := w.stamps.Get(w.path, info); ok {
		return d, true, nil
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return 0, false, fmt.Errorf("read manifest: %w", err)
	}
	canonical, err := canonicalize(data)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %v", ErrMalformed, w.path, err)
	}

	d := xxhash.Sum64(canonical)
	w.stamps.Set(w.path, d, info)
	return d, true, nil
}

func (w *Writer) writeFile(data []byte) error {
	if !w.atomic {
		return os.WriteFile(w.path, data, 0644)
	}

	tmpPath := w.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Encode formats paths as the manifest file stores them: a two-space
// indented array with no trailing newline and no HTML escaping.
func Encode(paths []string) ([]byte, error) {
	if paths == nil {
		paths = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(paths); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// canonicalize re-encodes any JSON document in compact form so formatting
// differences do not count as content changes.
func canonicalize(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Read loads the manifest at path.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}
