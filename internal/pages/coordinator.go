package pages

import (
	"context"
	"log/slog"
	"time"

	"github.com/wilbur182/pagegen/internal/debounce"
	"github.com/wilbur182/pagegen/internal/watch"
)

// State is the coordinator's regeneration state.
type State int

const (
	// Idle means no regeneration is scheduled.
	Idle State = iota
	// Pending means a regeneration is waiting for the debounce window to end.
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Coordinator reruns a Generator after bursts of watch events settle.
// All cycles run on the goroutine that calls Run.
type Coordinator struct {
	gen     *Generator
	src     watch.Source
	deb     *debounce.Debouncer
	logger  *slog.Logger
	onCycle func(CycleResult)
	manual  chan struct{}
}

// NewCoordinator creates a Coordinator. onCycle, if non-nil, is called on the
// run goroutine after every debounced cycle.
func NewCoordinator(gen *Generator, src watch.Source, delay time.Duration, logger *slog.Logger, onCycle func(CycleResult)) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		gen:     gen,
		src:     src,
		deb:     debounce.New(delay),
		logger:  logger,
		onCycle: onCycle,
		manual:  make(chan struct{}, 1),
	}
}

// RequestCycle asks the run loop for an immediate, non-debounced cycle.
// Requests made while one is already queued are merged.
func (c *Coordinator) RequestCycle() {
	select {
	case c.manual <- struct{}{}:
	default:
	}
}

// State reports whether a regeneration is pending.
func (c *Coordinator) State() State {
	if c.deb.Pending() {
		return Pending
	}
	return Idle
}

// Run consumes events until ctx is done or the source closes.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.deb.Stop()

	events := c.src.Events()
	errs := c.src.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !qualifies(ev) {
				continue
			}
			c.logger.Debug("pages: change detected", "op", ev.Op, "path", ev.Path)
			c.deb.Trigger()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			c.logger.Warn("pages: watch error", "err", err)

		case <-c.deb.C():
			c.cycle(TriggerWatch)

		case <-c.manual:
			c.cycle(TriggerManual)
		}
	}
}

func (c *Coordinator) cycle(trigger Trigger) {
	res := c.gen.Run(trigger)
	if c.onCycle != nil {
		c.onCycle(res)
	}
}

func qualifies(ev watch.Event) bool {
	switch ev.Op {
	case watch.Add, watch.Change, watch.Remove:
		return true
	}
	return false
}
