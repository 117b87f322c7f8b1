package host

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kestrelgames/modkit/internal/hostcfg"
	"github.com/kestrelgames/modkit/internal/logging"
	"github.com/kestrelgames/modkit/internal/mods"
	"github.com/kestrelgames/modkit/internal/patch"
)

type scriptedHooks struct {
	mods.BaseHooks
	earlyErr error
	order    *[]string
	label    string
	groups   []patch.Group
}

func (h *scriptedHooks) OnEarlyInit(*mods.Mod) error {
	if h.order != nil {
		*h.order = append(*h.order, h.label+":early")
	}
	return h.earlyErr
}

func (h *scriptedHooks) OnApplicationStart(*mods.Mod) {
	if h.order != nil {
		*h.order = append(*h.order, h.label+":start")
	}
}

func (h *scriptedHooks) OnInit(*mods.Mod) {
	if h.order != nil {
		*h.order = append(*h.order, h.label+":init")
	}
}

func (h *scriptedHooks) PatchGroups() []patch.Group { return h.groups }

func writeMod(t *testing.T, modsDir, dirName, body string) {
	t.Helper()
	dir := filepath.Join(modsDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "modkit.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func newTestHost(t *testing.T, hooks map[string]mods.Hooks, events *[]Event) (*Host, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	modsDir := filepath.Join(root, "mods")
	for name := range hooks {
		writeMod(t, modsDir, name,
			"name: "+name+"\nversion: 1.0.0\nhooks: hooks.go\n")
	}
	buf := &bytes.Buffer{}
	cfg := hostcfg.Config{RootDir: root, ModsDir: modsDir, Variant: hostcfg.VariantSteam}
	opts := []Option{
		WithHooksLoader(func(path string) (mods.Hooks, error) {
			name := filepath.Base(filepath.Dir(path))
			h, ok := hooks[name]
			if !ok {
				return nil, errors.New("no hooks scripted for " + name)
			}
			return h, nil
		}),
	}
	if events != nil {
		opts = append(opts, WithEventFunc(func(e Event) { *events = append(*events, e) }))
	}
	h, err := New(cfg, logging.NewWithWriter(buf), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h, buf
}

func TestLoadRunsPhasesInOrderAcrossMods(t *testing.T) {
	var order []string
	h, _ := newTestHost(t, map[string]mods.Hooks{
		"alpha": &scriptedHooks{label: "alpha", order: &order},
		"beta":  &scriptedHooks{label: "beta", order: &order},
	}, nil)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := strings.Join(order, ",")
	// Manifest scan sorts by path, so alpha precedes beta inside each phase,
	// and each phase completes for every mod before the next begins.
	want := "alpha:early,beta:early,alpha:start,alpha:init,beta:start,beta:init"
	if got != want {
		t.Fatalf("phase order:\n got %s\nwant %s", got, want)
	}
	if len(h.Mods()) != 2 {
		t.Fatalf("mods: %d", len(h.Mods()))
	}
}

func TestLoadDropsModWhoseEarlyInitFails(t *testing.T) {
	var order []string
	var events []Event
	h, buf := newTestHost(t, map[string]mods.Hooks{
		"bad":  &scriptedHooks{label: "bad", order: &order, earlyErr: errors.New("corrupt state")},
		"good": &scriptedHooks{label: "good", order: &order},
	}, &events)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(h.Mods()) != 1 || h.Mods()[0].DisplayName() != "good" {
		t.Fatalf("surviving mods: %+v", h.Mods())
	}
	if !strings.Contains(buf.String(), "corrupt state") {
		t.Fatalf("early failure not logged: %s", buf.String())
	}
	failed := 0
	for _, e := range events {
		if e.Kind == EventModFailed && e.Mod == "bad" {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("mod-failed events: %d", failed)
	}
}

func TestLoadAppliesPatchesWithIsolation(t *testing.T) {
	applied := []string{}
	h, _ := newTestHost(t, map[string]mods.Hooks{
		"patcher": &scriptedHooks{label: "patcher", groups: []patch.Group{
			{Target: "Broken", Apply: func() error { return errors.New("no target") }},
			{Target: "Fine", Apply: func() error { applied = append(applied, "fine"); return nil }},
		}},
	}, nil)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("later group skipped: %v", applied)
	}
	m := h.Mods()[0]
	if len(m.LoadErrors()) != 1 {
		t.Fatalf("load errors: %v", m.LoadErrors())
	}
}

func TestLoadEmitsLifecycleEvents(t *testing.T) {
	var events []Event
	h, _ := newTestHost(t, map[string]mods.Hooks{
		"alpha": &scriptedHooks{label: "alpha"},
	}, &events)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	var kinds []string
	for _, e := range events {
		kinds = append(kinds, string(e.Kind))
	}
	joined := strings.Join(kinds, ",")
	if !strings.Contains(joined, "mod-ready") || !strings.HasSuffix(joined, "done") {
		t.Fatalf("events: %s", joined)
	}
}

func TestLoadWithNoModsDir(t *testing.T) {
	root := t.TempDir()
	cfg := hostcfg.Config{
		RootDir: root,
		ModsDir: filepath.Join(root, "absent"),
		Variant: hostcfg.VariantSteam,
	}
	h, err := New(cfg, logging.NewWithWriter(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := h.Load(); err != nil {
		t.Fatalf("Load without mods: %v", err)
	}
	if len(h.Mods()) != 0 {
		t.Fatalf("mods: %d", len(h.Mods()))
	}
}

func TestHubReachesLoadedMods(t *testing.T) {
	h, _ := newTestHost(t, map[string]mods.Hooks{
		"alpha": &scriptedHooks{label: "alpha"},
	}, nil)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := h.Hub().Call("alpha", "no-op"); ok {
		t.Fatal("default hooks should report no result")
	}
	names := h.Hub().Names()
	if len(names) != 1 || names[0] != "alpha" {
		t.Fatalf("hub names: %v", names)
	}
}

func TestLoadDropsModWithBrokenHookUnit(t *testing.T) {
	root := t.TempDir()
	modsDir := filepath.Join(root, "mods")
	writeMod(t, modsDir, "broken", "name: broken\nversion: 1.0.0\nhooks: hooks.go\n")
	cfg := hostcfg.Config{RootDir: root, ModsDir: modsDir, Variant: hostcfg.VariantSteam}
	var events []Event
	h, err := New(cfg, logging.NewWithWriter(&bytes.Buffer{}),
		WithHooksLoader(func(string) (mods.Hooks, error) {
			return nil, errors.New("syntax error in hook unit")
		}),
		WithEventFunc(func(e Event) { events = append(events, e) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(h.Mods()) != 0 {
		t.Fatal("broken mod should be dropped")
	}
	found := false
	for _, e := range events {
		if e.Kind == EventModFailed && strings.Contains(e.Detail, "syntax error") {
			found = true
		}
	}
	if !found {
		t.Fatalf("failure event missing: %+v", events)
	}
}
