// Package fdmonitor reports how many file descriptors the process holds.
// Recursive watches hold one descriptor per directory on kqueue platforms,
// so large page trees can exhaust the limit.
package fdmonitor

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"
)

const (
	// DefaultWarningThreshold is the FD count that triggers a warning.
	DefaultWarningThreshold = 200
	// DefaultCriticalThreshold is the FD count that triggers a critical warning.
	DefaultCriticalThreshold = 500
	// MinCheckInterval prevents checking too frequently.
	MinCheckInterval = 10 * time.Second
)

// Monitor checks FD usage against thresholds, rate-limited to one real
// check per MinCheckInterval.
type Monitor struct {
	Warning  int
	Critical int

	logger    *slog.Logger
	mu        sync.Mutex
	lastCheck time.Time
	lastCount int
	count     func() int
}

// New creates a Monitor with the default thresholds.
func New(logger *slog.Logger) *Monitor {
	return &Monitor{
		Warning:  DefaultWarningThreshold,
		Critical: DefaultCriticalThreshold,
		logger:   logger,
		count:    Count,
	}
}

// fdDir returns the directory listing this process's descriptors.
func fdDir() string {
	switch runtime.GOOS {
	case "darwin":
		return "/dev/fd"
	case "linux":
		return fmt.Sprintf("/proc/%d/fd", os.Getpid())
	}
	return ""
}

// Count returns the current number of open file descriptors for this process.
// On non-Linux/macOS platforms, returns -1.
func Count() int {
	dir := fdDir()
	if dir == "" {
		return -1
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return -1
	}
	return len(entries)
}

// Check logs a warning if the FD count exceeds a threshold.
// what describes the operation that prompted the check.
func (m *Monitor) Check(what string) (count int, warned bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lastCheck.IsZero() && time.Since(m.lastCheck) < MinCheckInterval {
		return m.lastCount, false
	}

	count = m.count()
	if count < 0 {
		return count, false
	}
	m.lastCheck = time.Now()
	m.lastCount = count

	switch {
	case count >= m.Critical:
		m.warn("critical FD count", what, count, m.Critical)
		return count, true
	case count >= m.Warning:
		m.warn("high FD count", what, count, m.Warning)
		return count, true
	}
	return count, false
}

func (m *Monitor) warn(msg, what string, count, threshold int) {
	if m.logger == nil {
		return
	}
	m.logger.Warn(msg, "count", count, "threshold", threshold, "after", what)
}
