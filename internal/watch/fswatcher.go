package watch

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/wilbur182/pagegen/internal/fdmonitor"
)

// eventBuffer bounds how many events may queue before the consumer reads.
const eventBuffer = 64

// FSWatcher watches a directory tree with fsnotify and emits events for
// marker files matching its Matcher.
type FSWatcher struct {
	fsWatcher *fsnotify.Watcher
	matcher   *Matcher
	rootDir   string
	logger    *slog.Logger
	fds       *fdmonitor.Monitor

	events chan Event
	errors chan error
	stop   chan struct{}

	// known tracks marker files seen so removing or renaming a whole
	// directory can be reported per file. Owned by run after construction.
	known map[string]struct{}

	mu     sync.Mutex
	closed bool
}

// NewFSWatcher starts watching rootDir for files named marker.
func NewFSWatcher(rootDir, marker string, logger *slog.Logger) (*FSWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSWatcher{
		fsWatcher: fsw,
		matcher:   NewMatcher(rootDir, marker),
		rootDir:   filepath.Clean(rootDir),
		logger:    logger,
		fds:       fdmonitor.New(logger),
		events:    make(chan Event, eventBuffer),
		errors:    make(chan error, 1),
		stop:      make(chan struct{}),
		known:     make(map[string]struct{}),
	}

	// fsnotify doesn't watch subdirectories, so add the whole tree
	if err := w.addRecursive(w.rootDir, nil); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fds.Check("watch " + rootDir)
	logger.Debug("watch: armed", "pattern", w.matcher.Pattern(), "markers", len(w.known))

	go w.run()
	return w, nil
}

// skipDir reports directories that never hold pages. Directories directly
// below the root are pages themselves and are always watched.
func (w *FSWatcher) skipDir(path string) bool {
	if path == w.rootDir || filepath.Dir(path) == w.rootDir {
		return false
	}
	name := filepath.Base(path)
	switch name {
	case ".git", "node_modules", "vendor", "dist", "build", ".next", ".idea", ".vscode":
		return true
	}
	return strings.HasPrefix(name, ".")
}

// addRecursive watches dir and its subdirectories. Marker files found along
// the way are recorded, and passed to found when it is non-nil.
func (w *FSWatcher) addRecursive(dir string, found func(string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // Skip unreadable subdirectories
		}
		if !d.IsDir() {
			if w.matcher.Match(path) {
				w.known[path] = struct{}{}
				if found != nil {
					found(path)
				}
			}
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *FSWatcher) run() {
	defer close(w.errors)
	defer close(w.events)

	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch: error", "err", err)
			select {
			case w.errors <- err:
			default: // Unread error pending, drop
			}
		}
	}
}

// handle translates one fsnotify event into zero or more marker events.
func (w *FSWatcher) handle(ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if w.skipDir(ev.Name) {
				return
			}
			// A directory moved in or created with mkdir -p may already hold markers.
			_ = w.addRecursive(ev.Name, func(path string) { w.emit(Add, path) })
			w.fds.Check("watch " + ev.Name)
			return
		}
		if w.matcher.Match(ev.Name) {
			w.known[ev.Name] = struct{}{}
			w.emit(Add, ev.Name)
		}

	case ev.Has(fsnotify.Write):
		if w.matcher.Match(ev.Name) {
			w.emit(Change, ev.Name)
		}

	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.forget(ev.Name)
	}
}

// forget emits Remove for path itself or for every known marker below it.
func (w *FSWatcher) forget(path string) {
	if _, ok := w.known[path]; ok {
		delete(w.known, path)
		w.emit(Remove, path)
		return
	}
	if w.matcher.Match(path) {
		w.emit(Remove, path)
		return
	}
	prefix := path + string(filepath.Separator)
	for known := range w.known {
		if strings.HasPrefix(known, prefix) {
			delete(w.known, known)
			w.emit(Remove, known)
		}
	}
}

func (w *FSWatcher) emit(op Op, path string) {
	w.logger.Debug("watch: event", "op", op, "path", path)
	select {
	case w.events <- Event{Op: op, Path: path}:
	case <-w.stop:
	}
}

// Events returns the channel of marker events.
func (w *FSWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns watch errors that did not stop the watcher.
func (w *FSWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. It is safe to call more than once.
func (w *FSWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.stop)
	return w.fsWatcher.Close()
}
