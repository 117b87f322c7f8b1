// Package host discovers mods and drives every one of them through the
// staged lifecycle: early initialize, patch application, initialize, then
// the cooperative content-registration pass. A mod that fails early init is
// dropped from the pass; everything later is fault-isolated per unit and
// never aborts the host.
package host

import (
	"fmt"
	"path/filepath"

	"github.com/kestrelgames/modkit/internal/callhub"
	"github.com/kestrelgames/modkit/internal/hostcfg"
	"github.com/kestrelgames/modkit/internal/logging"
	"github.com/kestrelgames/modkit/internal/manifest"
	"github.com/kestrelgames/modkit/internal/modcode"
	"github.com/kestrelgames/modkit/internal/mods"
	"github.com/kestrelgames/modkit/internal/patch"
	"github.com/kestrelgames/modkit/internal/registry"
	"github.com/kestrelgames/modkit/internal/scheduler"
	"github.com/kestrelgames/modkit/internal/settings"
)

// EventKind classifies progress events.
type EventKind string

const (
	EventPhase     EventKind = "phase"
	EventModReady  EventKind = "mod-ready"
	EventModFailed EventKind = "mod-failed"
	EventStep      EventKind = "step"
	EventDone      EventKind = "done"
)

// Event is one progress notification from the load pass.
type Event struct {
	Kind   EventKind
	Mod    string
	Detail string
}

// HooksLoader resolves a mod's hook unit. The default evaluates the file
// with the interpreter; tests inject fakes.
type HooksLoader func(path string) (mods.Hooks, error)

// Host owns the collaborators shared by every mod in the session.
type Host struct {
	cfg        hostcfg.Config
	logger     *logging.Logger
	registry   *registry.Registry
	tracker    *patch.Tracker
	store      *settings.Store
	hub        *callhub.Hub
	mods       []*mods.Mod
	emit       func(Event)
	loadHooks  HooksLoader
}

// Option customizes a host.
type Option func(*Host)

// WithEventFunc installs a progress event sink.
func WithEventFunc(fn func(Event)) Option {
	return func(h *Host) {
		if fn != nil {
			h.emit = fn
		}
	}
}

// WithHooksLoader overrides how hook units are evaluated.
func WithHooksLoader(loader HooksLoader) Option {
	return func(h *Host) {
		if loader != nil {
			h.loadHooks = loader
		}
	}
}

// New wires a host from its configuration.
func New(cfg hostcfg.Config, logger *logging.Logger, opts ...Option) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Host{
		cfg:      cfg,
		logger:   logger,
		registry: registry.New(),
		tracker:  patch.NewTracker(),
		store:    settings.NewStore(filepath.Join(cfg.RootDir, "settings")),
		hub:      callhub.New(logger),
		emit:     func(Event) {},
		loadHooks: func(path string) (mods.Hooks, error) {
			return modcode.Load(path)
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Registry exposes the process-wide type→instance registry.
func (h *Host) Registry() *registry.Registry { return h.registry }

// Hub exposes the cross-mod call surface.
func (h *Host) Hub() *callhub.Hub { return h.hub }

// Mods returns the mods that survived early initialization.
func (h *Host) Mods() []*mods.Mod {
	return append([]*mods.Mod(nil), h.mods...)
}

// Load runs the full pass: discovery, phases A through C across all mods,
// then the cooperative registration drain.
func (h *Host) Load() error {
	files, err := manifest.Scan(h.cfg.ModsDir)
	if err != nil {
		return fmt.Errorf("host: %w", err)
	}
	h.emit(Event{Kind: EventPhase, Detail: fmt.Sprintf("discovered %d mods", len(files))})

	candidates := h.construct(files)

	h.emit(Event{Kind: EventPhase, Detail: "early initialize"})
	for _, m := range candidates {
		if err := m.EarlyInitialize(); err != nil {
			// The early hook is the one place failures are the host's
			// problem, not the mod core's: report and drop the mod.
			h.logger.Errorf("%s: early initialize: %v", m.DisplayName(), err)
			h.emit(Event{Kind: EventModFailed, Mod: m.DisplayName(), Detail: err.Error()})
			continue
		}
		h.mods = append(h.mods, m)
		h.hub.Register(m)
		h.emit(Event{Kind: EventModReady, Mod: m.DisplayName()})
	}

	h.emit(Event{Kind: EventPhase, Detail: "apply patches"})
	for _, m := range h.mods {
		m.ApplyPatches()
	}

	h.emit(Event{Kind: EventPhase, Detail: "initialize"})
	for _, m := range h.mods {
		m.Initialize()
	}

	h.emit(Event{Kind: EventPhase, Detail: "register content"})
	sched := scheduler.New(h.logger, scheduler.WithStepFunc(func(name string) {
		h.emit(Event{Kind: EventStep, Detail: name})
	}))
	for _, m := range h.mods {
		sched.Add(m.ContentLoadTask())
	}
	sched.Run()

	failures := 0
	for _, m := range h.mods {
		failures += len(m.LoadErrors())
	}
	h.emit(Event{Kind: EventDone, Detail: fmt.Sprintf("%d mods loaded, %d load errors", len(h.mods), failures)})
	return nil
}

// construct builds a mod per manifest. Construction-time failures (bad
// hook unit, unreadable resources, settings decode) drop only that mod.
func (h *Host) construct(files []manifest.File) []*mods.Mod {
	deps := mods.Deps{
		Registry: h.registry,
		Tracker:  h.tracker,
		Applier:  patch.FuncApplier{},
		Variant:  h.cfg.Variant,
		Logger:   h.logger,
		Settings: h.store,
	}
	var built []*mods.Mod
	for _, file := range files {
		m, err := h.buildMod(file, deps)
		if err != nil {
			h.logger.Errorf("%s: %v", file.Manifest.Name, err)
			h.emit(Event{Kind: EventModFailed, Mod: file.Manifest.Name, Detail: err.Error()})
			continue
		}
		built = append(built, m)
	}
	return built
}

func (h *Host) buildMod(file manifest.File, deps mods.Deps) (*mods.Mod, error) {
	var opts []mods.Option
	if file.Manifest.HooksFile != "" {
		hooks, err := h.loadHooks(filepath.Join(file.Dir, file.Manifest.HooksFile))
		if err != nil {
			return nil, err
		}
		opts = append(opts, mods.WithHooks(hooks))
	}
	m, err := mods.New(file.Manifest, deps, opts...)
	if err != nil {
		return nil, err
	}
	if file.Manifest.ResourcesDir != "" {
		if err := m.LoadResourcesDir(filepath.Join(file.Dir, file.Manifest.ResourcesDir)); err != nil {
			return nil, err
		}
	}
	if err := m.LoadSettings(); err != nil {
		return nil, err
	}
	return m, nil
}
