package manifest

import (
	"os"
	"sync"
	"time"
)

// stamp records the canonical digest of a manifest file along with the file
// metadata it was computed from.
type stamp struct {
	Digest  uint64
	ModTime time.Time
	Size    int64
}

// stampCache remembers digests per manifest path so unchanged files are not
// re-read on every cycle.
type stampCache struct {
	entries map[string]stamp
	mu      sync.RWMutex
}

func newStampCache() *stampCache {
	return &stampCache{entries: make(map[string]stamp)}
}

// Get returns the cached digest if the file metadata still matches.
func (c *stampCache) Get(path string, info os.FileInfo) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.entries[path]
	if !ok || s.Size != info.Size() || !s.ModTime.Equal(info.ModTime()) {
		return 0, false
	}
	return s.Digest, true
}

// Set stores a digest for path with the given file metadata.
func (c *stampCache) Set(path string, digest uint64, info os.FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = stamp{Digest: digest, ModTime: info.ModTime(), Size: info.Size()}
}

// Delete removes the entry for path.
func (c *stampCache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}
