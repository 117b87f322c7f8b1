// Package mods holds the Mod object and its staged lifecycle: early
// initialize, patch application, initialize, and the deferred content
// registration task. Each stage isolates per-unit failures so a mod with a
// broken patch or item still finishes loading.
package mods

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelgames/modkit/internal/content"
	"github.com/kestrelgames/modkit/internal/fault"
	"github.com/kestrelgames/modkit/internal/hostcfg"
	"github.com/kestrelgames/modkit/internal/logging"
	"github.com/kestrelgames/modkit/internal/manifest"
	"github.com/kestrelgames/modkit/internal/patch"
	"github.com/kestrelgames/modkit/internal/registry"
	"github.com/kestrelgames/modkit/internal/settings"
	"github.com/kestrelgames/modkit/internal/task"
)

// Deps are the host collaborators a mod needs across its lifecycle.
type Deps struct {
	Registry *registry.Registry
	Tracker  *patch.Tracker
	Applier  patch.Applier
	Variant  hostcfg.Variant
	Logger   *logging.Logger
	Settings *settings.Store
}

func (d Deps) validate() error {
	if d.Registry == nil {
		return fmt.Errorf("mods: registry is required")
	}
	if d.Tracker == nil {
		return fmt.Errorf("mods: patch tracker is required")
	}
	return nil
}

// Mod is one loaded add-on: identity, owned content, settings, resources,
// and the session's load-error record.
type Mod struct {
	manifest manifest.Manifest
	hooks    Hooks
	deps     Deps
	logger   *logging.Logger

	content    []content.Item
	settings   map[string]*settings.Setting
	resources  map[string][]byte
	loadErrors []string

	// loadTask is the create-once cell for the registration task.
	loadTask *task.LoadTask

	wantsAutoPatch  bool
	idPrefixQueried bool
	initialized     bool
}

// Option customizes a mod at construction.
type Option func(*Mod)

// WithHooks installs the author's hook implementation.
func WithHooks(h Hooks) Option {
	return func(m *Mod) {
		if h != nil {
			m.hooks = h
		}
	}
}

// New builds a mod from its manifest and host collaborators.
func New(mf manifest.Manifest, deps Deps, opts ...Option) (*Mod, error) {
	if err := mf.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Applier == nil {
		deps.Applier = patch.FuncApplier{}
	}
	normalized := mf.Normalized()
	m := &Mod{
		manifest:  normalized,
		hooks:     BaseHooks{},
		deps:      deps,
		logger:    deps.Logger.ForMod(normalized.Name, normalized.Author),
		settings:  map[string]*settings.Setting{},
		resources: map[string][]byte{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// DisplayName implements content.Owner.
func (m *Mod) DisplayName() string { return m.manifest.Name }

// Author returns the manifest author, for attribution in warnings.
func (m *Mod) Author() string { return m.manifest.Author }

// Manifest returns the mod's manifest.
func (m *Mod) Manifest() manifest.Manifest { return m.manifest }

// Logger returns the mod-scoped logger.
func (m *Mod) Logger() *logging.Logger { return m.logger }

// IDPrefix implements content.Owner. Reading it before the initialize
// phase is recorded: deriving ids that early is a known ordering hazard
// when the mod overrides its prefix later than the caller expects.
func (m *Mod) IDPrefix() string {
	if !m.initialized {
		m.idPrefixQueried = true
	}
	return m.prefix()
}

func (m *Mod) prefix() string {
	if m.manifest.IDPrefix != "" {
		return m.manifest.IDPrefix
	}
	return m.derivedPrefix()
}

func (m *Mod) derivedPrefix() string {
	return m.manifest.Name + "-"
}

// codeUnit identifies the mod's code unit for the patch tracker.
func (m *Mod) codeUnit() string { return m.manifest.CanonicalName() }

// EarlyInitialize is phase A: register the mod for type lookup, decide the
// patching mode, then run the author's early hook. Hook errors are not
// caught here; the host owns that failure.
//
// What goes into the registry is the hooks value, not the Mod: every Mod
// shares one type, so keying the lookup on the author's hook type is the
// only way a per-mod type lookup can work.
func (m *Mod) EarlyInitialize() error {
	m.deps.Registry.Add(m.hooks)
	if m.manifest.SelfManagedPatches {
		m.deps.Tracker.SetSelfManaged(m.codeUnit())
	}
	if m.manifest.WantsOptionalPatches() && !m.deps.Tracker.SelfManaged(m.codeUnit()) {
		m.deps.Tracker.MarkAuto(m.codeUnit())
		m.wantsAutoPatch = m.deps.Tracker.Auto(m.codeUnit())
	}
	return m.hooks.OnEarlyInit(m)
}

// WantsAutoPatch reports whether this mod requested the host's deferred
// patch pass.
func (m *Mod) WantsAutoPatch() bool { return m.wantsAutoPatch }

// ApplyPatches is phase B: apply every declared patch group as an atomic
// unit. A failing group is recorded and the next group is still attempted;
// on the Epic build, failures rooted in the Steam-only dependency are
// suppressed entirely.
func (m *Mod) ApplyPatches() {
	if !m.wantsAutoPatch {
		return
	}
	for _, group := range m.hooks.PatchGroups() {
		err := m.deps.Applier.ApplyGroup(group)
		if err == nil {
			continue
		}
		root := fault.Root(err)
		if patch.Suppressed(m.deps.Variant, root) {
			continue
		}
		m.logger.Warnf("failed to patch %s: %s", group.Target, root)
		m.loadErrors = append(m.loadErrors,
			fmt.Sprintf("Failed to apply patches for %s: %s", group.Target, root))
	}
}

// Initialize is phase C: the ordering-hazard diagnostic, then the
// application-start hook, then the general init hook, in that order.
func (m *Mod) Initialize() {
	if m.idPrefixQueried && m.prefix() != m.derivedPrefix() {
		m.logger.Warnf("id prefix %q was read before initialization; ids derived that early used the default %q",
			m.prefix(), m.derivedPrefix())
	}
	m.initialized = true
	m.hooks.OnApplicationStart(m)
	m.hooks.OnInit(m)
}

// ContentLoadTask returns the mod's registration task, creating it on
// first call and returning the same instance ever after.
func (m *Mod) ContentLoadTask() *task.LoadTask {
	if m.loadTask == nil {
		m.loadTask = task.NewRegistration(
			fmt.Sprintf("Registering content for %s", m.DisplayName()),
			func() []content.Item { return m.content },
			m.logger,
		)
	}
	return m.loadTask
}

// Add appends items to the mod's content collection in order, sets their
// owner back-reference, and registers each instance for type lookup. It
// never calls Load or Register: items added before the registration phase
// are picked up by the content load task, and items added after it are the
// caller's responsibility (see AddAndRegister).
func (m *Mod) Add(items ...content.Item) {
	for _, item := range items {
		if item == nil {
			continue
		}
		item.SetOwner(m)
		m.content = append(m.content, item)
		m.deps.Registry.Add(item)
	}
}

// AddAndRegister is the late-addition path: Add plus an immediate
// fault-isolated Load and Register per item. Called while the registration
// task is still draining it only appends; the task's live cursor reaches
// the new items itself, so nothing is registered twice.
func (m *Mod) AddAndRegister(items ...content.Item) {
	m.Add(items...)
	if m.loadTask != nil && !m.loadTask.Done() {
		return
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		item := item
		err := fault.Try(func() error {
			if err := item.Load(); err != nil {
				return err
			}
			return item.Register()
		})
		if err != nil {
			m.logger.Errorf("failed to register %s: %s", item.Name(), fault.Root(err))
			m.loadErrors = append(m.loadErrors,
				fmt.Sprintf("Failed to register %s: %s", item.Name(), fault.Root(err)))
		}
	}
}

// Content returns the mod's content collection in insertion order.
func (m *Mod) Content() []content.Item {
	return append([]content.Item(nil), m.content...)
}

// LoadErrors returns the session's accumulated load errors. The list only
// grows; it is the durable diagnostic record for this load.
func (m *Mod) LoadErrors() []string {
	return append([]string(nil), m.loadErrors...)
}

// RecordLoadError appends one load error.
func (m *Mod) RecordLoadError(format string, args ...any) {
	m.loadErrors = append(m.loadErrors, fmt.Sprintf(format, args...))
}

// Call dispatches a named operation to the mod's hooks. Unknown operations
// yield (nil, false); a misbehaving hook is contained rather than allowed
// to unwind the caller.
func (m *Mod) Call(op string, params ...any) (any, bool) {
	var result any
	var ok bool
	err := fault.Try(func() error {
		result, ok = m.hooks.Call(op, params...)
		return nil
	})
	if err != nil {
		m.logger.Errorf("call %s: %s", op, fault.Root(err))
		return nil, false
	}
	return result, ok
}

// SetSetting stores a named setting owned by this mod.
func (m *Mod) SetSetting(name string, value any) {
	if existing, ok := m.settings[name]; ok {
		existing.Value = value
		return
	}
	m.settings[name] = &settings.Setting{Name: name, Value: value}
}

// Setting returns a named setting's value.
func (m *Mod) Setting(name string) (any, bool) {
	s, ok := m.settings[name]
	if !ok {
		return nil, false
	}
	return s.Value, true
}

// SettingsPath resolves this mod's settings file, preferring the legacy
// display-name file when one exists.
func (m *Mod) SettingsPath() string {
	if m.deps.Settings == nil {
		return ""
	}
	return m.deps.Settings.Resolve(m.DisplayName(), m.manifest.CanonicalName())
}

// LoadSettings reads the mod's settings blob into the settings map.
func (m *Mod) LoadSettings() error {
	if m.deps.Settings == nil {
		return nil
	}
	blob, err := m.deps.Settings.Load(m.SettingsPath())
	if err != nil {
		return fmt.Errorf("mods: %s: %w", m.DisplayName(), err)
	}
	for name, value := range blob {
		m.SetSetting(name, value)
	}
	return nil
}

// SaveSettings writes the settings map back to disk.
func (m *Mod) SaveSettings() error {
	if m.deps.Settings == nil {
		return nil
	}
	blob := settings.Blob{}
	for name, s := range m.settings {
		blob[name] = s.Value
	}
	if err := m.deps.Settings.Save(m.SettingsPath(), blob); err != nil {
		return fmt.Errorf("mods: %s: %w", m.DisplayName(), err)
	}
	return nil
}

// SetResource stores a raw resource owned by the mod.
func (m *Mod) SetResource(name string, data []byte) {
	m.resources[name] = data
}

// Resource returns a raw resource by name.
func (m *Mod) Resource(name string) ([]byte, bool) {
	data, ok := m.resources[name]
	return data, ok
}

// LoadResourcesDir reads every regular file under dir into the resource
// map, keyed by slash-separated relative path.
func (m *Mod) LoadResourcesDir(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("mods: resources: %w", err)
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("mods: resources: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("mods: resources: read %s: %w", path, err)
		}
		m.SetResource(filepath.ToSlash(rel), data)
		return nil
	})
}
