package pages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wilbur182/pagegen/internal/watch"
)

const testDelay = 50 * time.Millisecond

// startCoordinator runs a coordinator over a fake source and returns a
// channel of cycle results.
func startCoordinator(t *testing.T, gen *Generator) (*Coordinator, *fakeSource, <-chan CycleResult) {
	t.Helper()
	src := newFakeSource()
	results := make(chan CycleResult, 16)
	c := NewCoordinator(gen, src, testDelay, discardLogger(), func(r CycleResult) { results <- r })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return c, src, results
}

func TestCoordinator_DebounceCollapsesBurst(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, map[string]string{"a": "router.ts"})
	gen := newGenerator(root, filepath.Join(t.TempDir(), "pages.json"), discardLogger())
	_, src, results := startCoordinator(t, gen)

	marker := filepath.Join(root, "a", "router.ts")
	for i := 0; i < 5; i++ {
		src.emit(watch.Change, marker)
		time.Sleep(5 * time.Millisecond)
	}
	last := time.Now()

	select {
	case res := <-results:
		if res.Trigger != TriggerWatch {
			t.Errorf("Trigger = %q, want watch", res.Trigger)
		}
		if res.Started.Sub(last) < testDelay-5*time.Millisecond {
			t.Errorf("cycle started %v after last event, want >= %v", res.Started.Sub(last), testDelay)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for cycle")
	}

	select {
	case <-results:
		t.Error("burst produced more than one cycle")
	case <-time.After(4 * testDelay):
	}
}

func TestCoordinator_StatePendingUntilQuiet(t *testing.T) {
	root := t.TempDir()
	gen := newGenerator(root, filepath.Join(t.TempDir(), "pages.json"), discardLogger())
	c, src, results := startCoordinator(t, gen)

	if c.State() != Idle {
		t.Errorf("initial State() = %v, want idle", c.State())
	}
	src.emit(watch.Add, filepath.Join(root, "x", "router.ts"))

	deadline := time.Now().Add(testDelay / 2)
	for c.State() != Pending && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if c.State() != Pending {
		t.Error("State() should be pending after an event")
	}

	select {
	case <-results:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for cycle")
	}
	if c.State() != Idle {
		t.Errorf("State() after cycle = %v, want idle", c.State())
	}
}

func TestCoordinator_ErrorKeepsWatchArmed(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "pages.json")
	makeTree(t, root, map[string]string{"a": "router.ts"})
	if err := os.WriteFile(out, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	gen := newGenerator(root, out, discardLogger())
	_, src, results := startCoordinator(t, gen)

	marker := filepath.Join(root, "a", "router.ts")
	src.emit(watch.Change, marker)
	select {
	case res := <-results:
		if res.Err == nil {
			t.Fatal("expected malformed manifest error")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for failing cycle")
	}

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	src.emit(watch.Change, marker)
	select {
	case res := <-results:
		if res.Err != nil || !res.Written {
			t.Errorf("retry = written %v, err %v", res.Written, res.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("coordinator stopped after an error")
	}
}

func TestCoordinator_IgnoresUnknownOps(t *testing.T) {
	gen := newGenerator(t.TempDir(), filepath.Join(t.TempDir(), "pages.json"), discardLogger())
	_, src, results := startCoordinator(t, gen)

	src.emit(watch.Op(0), "whatever")
	select {
	case <-results:
		t.Error("unknown op should not trigger a cycle")
	case <-time.After(4 * testDelay):
	}
}

func TestCoordinator_SourceCloseEndsRun(t *testing.T) {
	src := newFakeSource()
	gen := newGenerator(t.TempDir(), filepath.Join(t.TempDir(), "pages.json"), discardLogger())
	c := NewCoordinator(gen, src, testDelay, discardLogger(), nil)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	src.errs <- errors.New("queue overflow")
	_ = src.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on source close", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after source closed")
	}
}

func TestCoordinator_ContextCancel(t *testing.T) {
	gen := newGenerator(t.TempDir(), filepath.Join(t.TempDir(), "pages.json"), discardLogger())
	c := NewCoordinator(gen, newFakeSource(), testDelay, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestCoordinator_RequestCycleRunsImmediately(t *testing.T) {
	gen := newGenerator(t.TempDir(), filepath.Join(t.TempDir(), "pages.json"), discardLogger())
	c, _, results := startCoordinator(t, gen)

	if c.State() != Idle {
		t.Fatal("coordinator should start idle")
	}
	c.RequestCycle()
	select {
	case res := <-results:
		if res.Trigger != TriggerManual {
			t.Errorf("Trigger = %q, want manual", res.Trigger)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for manual cycle")
	}
}
