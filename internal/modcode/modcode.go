// Package modcode evaluates a mod's interpreted hook unit. A mod directory
// may ship a plain Go file; it is run through yaegi and must define
// ModHooks() returning a map of hook name to function. This keeps mod
// behavior in the mod's own directory without compiling it into the host.
package modcode

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kestrelgames/modkit/internal/mods"
	"github.com/kestrelgames/modkit/internal/patch"
)

// EntrySymbol is the function every hook unit must define.
const EntrySymbol = "ModHooks"

// Recognized hook names and their required signatures.
const (
	hookEarlyInit   = "onEarlyInit"        // func() error
	hookAppStart    = "onApplicationStart" // func()
	hookInit        = "onInit"             // func()
	hookPatchGroups = "patchGroups"        // func() map[string]func() error
	hookCall        = "call"               // func(string, []any) (any, bool)
)

// HookSet bridges interpreted hook functions into the mods.Hooks surface.
// Hooks the unit does not declare fall back to the no-op defaults.
type HookSet struct {
	mods.BaseHooks
	earlyInit   func() error
	appStart    func()
	init        func()
	patchGroups func() map[string]func() error
	call        func(op string, params []any) (any, bool)
}

// OnEarlyInit implements mods.Hooks.
func (h *HookSet) OnEarlyInit(*mods.Mod) error {
	if h.earlyInit == nil {
		return nil
	}
	return h.earlyInit()
}

// OnApplicationStart implements mods.Hooks.
func (h *HookSet) OnApplicationStart(*mods.Mod) {
	if h.appStart != nil {
		h.appStart()
	}
}

// OnInit implements mods.Hooks.
func (h *HookSet) OnInit(*mods.Mod) {
	if h.init != nil {
		h.init()
	}
}

// PatchGroups implements mods.Hooks. Groups are ordered by target name so
// the patch pass is deterministic across runs.
func (h *HookSet) PatchGroups() []patch.Group {
	if h.patchGroups == nil {
		return nil
	}
	byTarget := h.patchGroups()
	targets := make([]string, 0, len(byTarget))
	for target := range byTarget {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	groups := make([]patch.Group, 0, len(targets))
	for _, target := range targets {
		groups = append(groups, patch.Group{Target: target, Apply: byTarget[target]})
	}
	return groups
}

// Call implements mods.Hooks.
func (h *HookSet) Call(op string, params ...any) (any, bool) {
	if h.call == nil {
		return nil, false
	}
	return h.call(op, params)
}

// Load evaluates the hook unit at path. Interpreter failures and malformed
// hook maps are early-init-class errors: they abort the mod's load.
func Load(path string) (*HookSet, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modcode: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("modcode: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("modcode: interpreter setup: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("modcode: interpret %s: %w", path, err)
	}
	value, err := i.Eval(EntrySymbol)
	if err != nil {
		return nil, fmt.Errorf("modcode: %s must define %s() map[string]any: %w", path, EntrySymbol, err)
	}
	entry, ok := value.Interface().(func() map[string]any)
	if !ok {
		return nil, fmt.Errorf("modcode: %s: %s is not func() map[string]any", path, EntrySymbol)
	}
	return bridge(path, entry())
}

func bridge(path string, raw map[string]any) (*HookSet, error) {
	set := &HookSet{}
	for name, fn := range raw {
		switch name {
		case hookEarlyInit:
			typed, ok := fn.(func() error)
			if !ok {
				return nil, signatureError(path, name, "func() error")
			}
			set.earlyInit = typed
		case hookAppStart:
			typed, ok := fn.(func())
			if !ok {
				return nil, signatureError(path, name, "func()")
			}
			set.appStart = typed
		case hookInit:
			typed, ok := fn.(func())
			if !ok {
				return nil, signatureError(path, name, "func()")
			}
			set.init = typed
		case hookPatchGroups:
			typed, ok := fn.(func() map[string]func() error)
			if !ok {
				return nil, signatureError(path, name, "func() map[string]func() error")
			}
			set.patchGroups = typed
		case hookCall:
			typed, ok := fn.(func(string, []any) (any, bool))
			if !ok {
				return nil, signatureError(path, name, "func(string, []any) (any, bool)")
			}
			set.call = typed
		default:
			return nil, fmt.Errorf("modcode: %s: unknown hook %q", path, name)
		}
	}
	return set, nil
}

func signatureError(path, hook, want string) error {
	return fmt.Errorf("modcode: %s: hook %s must be %s", path, hook, want)
}
