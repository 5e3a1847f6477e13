package pages

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/wilbur182/pagegen/internal/features"
	"github.com/wilbur182/pagegen/internal/manifest"
	"github.com/wilbur182/pagegen/internal/plugin"
	"github.com/wilbur182/pagegen/internal/watch"
)

const pluginID = "pages"

var errNoConfig = errors.New("pages: no config")

// SourceFactory opens a watch source for marker files under root.
type SourceFactory func(root, marker string, logger *slog.Logger) (watch.Source, error)

// fsSource is the default SourceFactory.
func fsSource(root, marker string, logger *slog.Logger) (watch.Source, error) {
	return watch.NewFSWatcher(root, marker, logger)
}

// Plugin generates the pages manifest on build start and keeps it current.
type Plugin struct {
	ctx       *plugin.Context
	gen       *Generator
	delay     time.Duration
	newSource SourceFactory
	onCycle   func(CycleResult)

	mu     sync.Mutex
	coord  *Coordinator
	src    watch.Source
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithSourceFactory replaces the fsnotify-backed watch source.
func WithSourceFactory(f SourceFactory) Option {
	return func(p *Plugin) { p.newSource = f }
}

// WithObserver registers a callback for every cycle, including the initial one.
func WithObserver(fn func(CycleResult)) Option {
	return func(p *Plugin) { p.onCycle = fn }
}

// New creates the pages plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{newSource: fsSource}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the plugin identifier.
func (p *Plugin) ID() string { return pluginID }

// Name returns the plugin display name.
func (p *Plugin) Name() string { return "dynamic-generation-file" }

// Init validates the config and prepares the generator.
func (p *Plugin) Init(ctx *plugin.Context) error {
	if ctx.Config == nil {
		return errNoConfig
	}
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	cfg := ctx.Config.Pages

	p.ctx = ctx
	p.delay = cfg.Debounce
	p.gen = &Generator{
		InputDir: resolve(ctx.WorkDir, cfg.InputDir),
		Marker:   cfg.Marker,
		Relative: features.IsEnabled(features.RelativePaths.Name),
		Writer: manifest.NewWriter(
			resolve(ctx.WorkDir, cfg.OutputFile),
			manifest.WithAtomic(features.IsEnabled(features.AtomicWrite.Name)),
		),
		Logger: ctx.Logger,
	}
	return nil
}

func resolve(workDir, path string) string {
	if filepath.IsAbs(path) || workDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(workDir, path)
}

// Generator returns the plugin's generator. Valid after Init.
func (p *Plugin) Generator() *Generator {
	return p.gen
}

// BuildStart writes the manifest once, then watches for marker changes.
// Failures are logged; the build is never interrupted.
func (p *Plugin) BuildStart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen == nil || p.coord != nil {
		return
	}

	res := p.gen.Run(TriggerInitial)
	if p.onCycle != nil {
		p.onCycle(res)
	}

	src, err := p.newSource(p.gen.InputDir, p.gen.Marker, p.logger())
	if err != nil {
		p.logger().Error("pages: watch failed", "dir", p.gen.InputDir, "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.src = src
	p.cancel = cancel
	p.done = make(chan struct{})
	p.coord = NewCoordinator(p.gen, src, p.delay, p.logger(), p.onCycle)

	go func(coord *Coordinator, done chan struct{}) {
		defer close(done)
		_ = coord.Run(ctx)
	}(p.coord, p.done)
}

// Regenerate queues an immediate cycle on the watch loop. It does nothing
// when the watch is not armed.
func (p *Plugin) Regenerate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.coord != nil {
		p.coord.RequestCycle()
	}
}

// State reports the coordinator state, Idle when not watching.
func (p *Plugin) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.coord == nil {
		return Idle
	}
	return p.coord.State()
}

// Stop tears down the watch and waits for the run loop to exit.
func (p *Plugin) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.coord == nil {
		return
	}
	p.cancel()
	if err := p.src.Close(); err != nil {
		p.logger().Debug("pages: close watch", "err", err)
	}
	<-p.done
	p.coord = nil
	p.src = nil
}

func (p *Plugin) logger() *slog.Logger {
	if p.ctx != nil && p.ctx.Logger != nil {
		return p.ctx.Logger
	}
	return slog.Default()
}
