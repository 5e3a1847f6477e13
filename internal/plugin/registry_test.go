package plugin

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fakePlugin struct {
	id      string
	initErr error
	panicOn string
	calls   *[]string
}

func (f *fakePlugin) ID() string   { return f.id }
func (f *fakePlugin) Name() string { return strings.ToUpper(f.id) }

func (f *fakePlugin) Init(*Context) error {
	f.record("init")
	if f.panicOn == "init" {
		panic("boom")
	}
	return f.initErr
}

func (f *fakePlugin) BuildStart() {
	f.record("start")
	if f.panicOn == "start" {
		panic("boom")
	}
}

func (f *fakePlugin) Stop() {
	f.record("stop")
	if f.panicOn == "stop" {
		panic("boom")
	}
}

func (f *fakePlugin) record(what string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.id+":"+what)
	}
}

func newTestRegistry(buf *bytes.Buffer) *Registry {
	return NewRegistry(&Context{Logger: slog.New(slog.NewTextHandler(buf, nil))})
}

func TestRegistry_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	var calls []string
	r := newTestRegistry(&buf)

	for _, id := range []string{"a", "b"} {
		if err := r.Register(&fakePlugin{id: id, calls: &calls}); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
	}
	r.BuildStart()
	r.Stop()

	want := "a:init b:init a:start b:start b:stop a:stop"
	if got := strings.Join(calls, " "); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestRegistry_InitFailureSkipsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	var calls []string
	r := newTestRegistry(&buf)

	initErr := errors.New("no input dir")
	err := r.Register(&fakePlugin{id: "bad", initErr: initErr, calls: &calls})
	if !errors.Is(err, initErr) {
		t.Fatalf("Register() = %v, want wrapped init error", err)
	}
	if !strings.Contains(buf.String(), "plugin unavailable") {
		t.Errorf("missing unavailable log: %s", buf.String())
	}

	r.BuildStart()
	r.Stop()
	if got := strings.Join(calls, " "); got != "bad:init" {
		t.Errorf("calls = %q, want only init", got)
	}
}

func TestRegistry_RecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRegistry(&buf)

	if err := r.Register(&fakePlugin{id: "init", panicOn: "init"}); err == nil {
		t.Error("panicking Init should be reported as an error")
	}
	if err := r.Register(&fakePlugin{id: "start", panicOn: "start"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&fakePlugin{id: "stop", panicOn: "stop"}); err != nil {
		t.Fatal(err)
	}

	r.BuildStart()
	r.Stop()

	if !strings.Contains(buf.String(), "plugin build start panic") {
		t.Errorf("missing build start panic log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "plugin stop panic") {
		t.Errorf("missing stop panic log: %s", buf.String())
	}
}
