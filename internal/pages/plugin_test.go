package pages

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/wilbur182/pagegen/internal/config"
	"github.com/wilbur182/pagegen/internal/manifest"
	"github.com/wilbur182/pagegen/internal/plugin"
	"github.com/wilbur182/pagegen/internal/watch"
)

func testContext(workDir, input, output string) *plugin.Context {
	cfg := config.Default()
	cfg.Pages.InputDir = input
	cfg.Pages.OutputFile = output
	cfg.Pages.Debounce = testDelay
	return &plugin.Context{WorkDir: workDir, Config: cfg, Logger: discardLogger()}
}

// waitForManifest polls until the manifest equals want.
func waitForManifest(t *testing.T, path string, want []string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	var got []string
	for time.Now().Before(deadline) {
		var err error
		got, err = manifest.Read(path)
		if err == nil && reflect.DeepEqual(got, want) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("manifest = %v, want %v", got, want)
}

func TestPlugin_EndToEnd(t *testing.T) {
	work := t.TempDir()
	root := filepath.Join(work, "src", "pages")
	makeTree(t, root, map[string]string{
		"pageA": "router.ts",
		"pageB": "index.ts",
		"pageC": "router.ts",
	})
	out := filepath.Join(work, "src", "generated", "pages.json")

	p := New()
	if err := p.Init(testContext(work, "src/pages", "src/generated/pages.json")); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	p.BuildStart()
	defer p.Stop()

	pageA := filepath.Join(root, "pageA", "router.ts")
	pageC := filepath.Join(root, "pageC", "router.ts")
	got, err := manifest.Read(out)
	if err != nil {
		t.Fatalf("initial manifest missing: %v", err)
	}
	if !reflect.DeepEqual(got, []string{pageA, pageC}) {
		t.Errorf("initial manifest = %v", got)
	}

	if err := os.Remove(pageC); err != nil {
		t.Fatal(err)
	}
	waitForManifest(t, out, []string{pageA})

	makeTree(t, root, map[string]string{"pageD": "router.ts"})
	waitForManifest(t, out, []string{pageA, filepath.Join(root, "pageD", "router.ts")})
}

func TestPlugin_PagesWithToolingDirNames(t *testing.T) {
	for _, name := range []string{"dist", "build", "vendor", ".hidden"} {
		t.Run(name, func(t *testing.T) {
			work := t.TempDir()
			root := filepath.Join(work, "pages")
			makeTree(t, root, map[string]string{"home": "router.ts"})
			out := filepath.Join(work, "pages.json")

			p := New()
			if err := p.Init(testContext(work, "pages", "pages.json")); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			p.BuildStart()
			defer p.Stop()

			home := filepath.Join(root, "home", "router.ts")
			waitForManifest(t, out, []string{home})

			makeTree(t, root, map[string]string{name: "router.ts"})
			added := filepath.Join(root, name, "router.ts")
			want := []string{added, home}
			if name > "home" {
				want = []string{home, added}
			}
			waitForManifest(t, out, want)

			if err := os.Remove(added); err != nil {
				t.Fatal(err)
			}
			waitForManifest(t, out, []string{home})
		})
	}
}

func TestPlugin_ObserverSeesInitialCycle(t *testing.T) {
	work := t.TempDir()
	makeTree(t, work, map[string]string{"pages/a": "router.ts"})

	var mu sync.Mutex
	var triggers []Trigger
	p := New(
		WithSourceFactory(func(string, string, *slog.Logger) (watch.Source, error) {
			return newFakeSource(), nil
		}),
		WithObserver(func(r CycleResult) {
			mu.Lock()
			triggers = append(triggers, r.Trigger)
			mu.Unlock()
		}),
	)
	if err := p.Init(testContext(work, "pages", "pages.json")); err != nil {
		t.Fatal(err)
	}
	p.BuildStart()
	defer p.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(triggers) != 1 || triggers[0] != TriggerInitial {
		t.Errorf("triggers = %v, want [initial]", triggers)
	}
}

func TestPlugin_WatchFailureStillWritesManifest(t *testing.T) {
	work := t.TempDir()
	makeTree(t, work, map[string]string{"pages/a": "router.ts"})

	p := New(WithSourceFactory(func(string, string, *slog.Logger) (watch.Source, error) {
		return nil, errors.New("too many open files")
	}))
	if err := p.Init(testContext(work, "pages", "out/pages.json")); err != nil {
		t.Fatal(err)
	}
	p.BuildStart()
	p.Stop()

	if _, err := manifest.Read(filepath.Join(work, "out", "pages.json")); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func TestPlugin_BuildStartWithMissingInputDir(t *testing.T) {
	work := t.TempDir()
	p := New()
	if err := p.Init(testContext(work, "missing", "pages.json")); err != nil {
		t.Fatal(err)
	}

	// Must not panic or block.
	p.BuildStart()
	p.Stop()
}

func TestPlugin_InitRequiresConfig(t *testing.T) {
	if err := New().Init(&plugin.Context{}); err == nil {
		t.Error("Init() without config should fail")
	}
	err := New().Init(testContext(t.TempDir(), "", "pages.json"))
	if !errors.Is(err, config.ErrMissingInputDir) {
		t.Errorf("Init() = %v, want ErrMissingInputDir", err)
	}
}

func TestPlugin_BuildStartTwiceArmsOnce(t *testing.T) {
	work := t.TempDir()
	makeTree(t, work, map[string]string{"pages/a": "router.ts"})

	opened := 0
	p := New(WithSourceFactory(func(string, string, *slog.Logger) (watch.Source, error) {
		opened++
		return newFakeSource(), nil
	}))
	if err := p.Init(testContext(work, "pages", "pages.json")); err != nil {
		t.Fatal(err)
	}
	p.BuildStart()
	p.BuildStart()
	defer p.Stop()

	if opened != 1 {
		t.Errorf("watch opened %d times, want 1", opened)
	}
}

func TestPlugin_RegistryLifecycle(t *testing.T) {
	work := t.TempDir()
	makeTree(t, work, map[string]string{"pages/a": "router.ts"})

	r := plugin.NewRegistry(testContext(work, "pages", "pages.json"))
	p := New()
	if err := r.Register(p); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	r.BuildStart()
	if p.coord == nil {
		t.Error("BuildStart should arm the watch")
	}
	r.Stop()

	if p.coord != nil {
		t.Error("Stop should tear down the watch")
	}
	if _, err := os.Stat(filepath.Join(work, "pages.json")); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}
