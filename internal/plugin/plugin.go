// Package plugin defines the build-pipeline lifecycle that pagegen plugs
// into, and a registry that drives it.
package plugin

// Plugin is a build extension. The host calls Init once, BuildStart when a
// build (or dev session) begins, and Stop on teardown.
type Plugin interface {
	ID() string
	Name() string
	Init(ctx *Context) error
	// BuildStart must not block and must not fail the build; problems are
	// reported through the context logger.
	BuildStart()
	Stop()
}
