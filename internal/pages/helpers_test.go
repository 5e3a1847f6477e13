package pages

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wilbur182/pagegen/internal/watch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeTree creates root/<dir>/<file> for each entry.
func makeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for dir, name := range files {
		d := filepath.Join(root, dir)
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(d, name), []byte("export default []\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// fakeSource is an in-memory watch.Source.
type fakeSource struct {
	events chan watch.Event
	errs   chan error
	once   sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events: make(chan watch.Event, 16),
		errs:   make(chan error, 1),
	}
}

func (f *fakeSource) Events() <-chan watch.Event { return f.events }
func (f *fakeSource) Errors() <-chan error       { return f.errs }

func (f *fakeSource) Close() error {
	f.once.Do(func() { close(f.events) })
	return nil
}

func (f *fakeSource) emit(op watch.Op, path string) {
	f.events <- watch.Event{Op: op, Path: path}
}
