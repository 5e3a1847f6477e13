package pages

import (
	"log/slog"
	"time"

	"github.com/wilbur182/pagegen/internal/manifest"
	"github.com/wilbur182/pagegen/internal/scanner"
)

// Trigger names what started a cycle.
type Trigger string

const (
	TriggerInitial Trigger = "initial"
	TriggerWatch   Trigger = "watch"
	TriggerManual  Trigger = "manual"
)

// CycleResult describes one scan-and-write cycle.
type CycleResult struct {
	Trigger  Trigger
	Started  time.Time
	Duration time.Duration
	Paths    []string
	Written  bool
	Err      error
}

// Generator scans InputDir for marker files and writes the manifest.
type Generator struct {
	InputDir string
	Marker   string
	Relative bool // write paths relative to InputDir
	Writer   *manifest.Writer
	Logger   *slog.Logger
}

// Run performs one cycle. Errors are logged and returned in the result,
// never raised.
func (g *Generator) Run(trigger Trigger) (res CycleResult) {
	res = CycleResult{Trigger: trigger, Started: time.Now()}
	defer func() { res.Duration = time.Since(res.Started) }()

	paths, err := scanner.Scan(g.InputDir, g.Marker)
	if err != nil {
		res.Err = err
		g.logger().Error("pages: generation failed", "trigger", trigger, "err", err)
		return res
	}
	if g.Relative {
		paths = scanner.Relativize(g.InputDir, paths)
	}
	res.Paths = paths

	written, err := g.Writer.Write(paths)
	if err != nil {
		res.Err = err
		g.logger().Error("pages: generation failed", "trigger", trigger, "err", err)
		return res
	}
	res.Written = written

	if written {
		g.logger().Info("pages: manifest updated", "file", g.Writer.Path(), "pages", len(paths))
	} else {
		g.logger().Debug("pages: manifest unchanged", "file", g.Writer.Path(), "pages", len(paths))
	}
	return res
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
