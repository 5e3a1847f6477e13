package plugin

import (
	"fmt"
	"sync"
)

// Registry manages plugin registration and lifecycle.
type Registry struct {
	plugins []Plugin
	ctx     *Context
	mu      sync.RWMutex
}

// NewRegistry creates a new plugin registry with the given context.
func NewRegistry(ctx *Context) *Registry {
	return &Registry{
		plugins: make([]Plugin, 0),
		ctx:     ctx,
	}
}

// Register adds a plugin to the registry.
// If Init fails, the plugin is left out of the lifecycle and the error is returned.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.safeInit(p); err != nil {
		if r.ctx != nil && r.ctx.Logger != nil {
			r.ctx.Logger.Warn("plugin unavailable", "id", p.ID(), "reason", err)
		}
		return fmt.Errorf("plugin %s: %w", p.ID(), err)
	}

	r.plugins = append(r.plugins, p)
	return nil
}

// safeInit calls Init with panic recovery.
func (r *Registry) safeInit(p Plugin) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return p.Init(r.ctx)
}

// BuildStart runs the build-start hook of every registered plugin in
// registration order.
func (r *Registry) BuildStart() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		r.safeBuildStart(p)
	}
}

// safeBuildStart calls BuildStart with panic recovery so a broken plugin
// never aborts the build.
func (r *Registry) safeBuildStart(p Plugin) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.ctx != nil && r.ctx.Logger != nil {
				r.ctx.Logger.Error("plugin build start panic", "id", p.ID(), "error", rec)
			}
		}
	}()
	p.BuildStart()
}

// Stop stops all registered plugins in reverse order.
func (r *Registry) Stop() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.plugins) - 1; i >= 0; i-- {
		r.safeStop(r.plugins[i])
	}
}

// safeStop calls Stop with panic recovery.
func (r *Registry) safeStop(p Plugin) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.ctx != nil && r.ctx.Logger != nil {
				r.ctx.Logger.Error("plugin stop panic", "id", p.ID(), "error", rec)
			}
		}
	}()
	p.Stop()
}
