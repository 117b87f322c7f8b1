package mods

import "github.com/kestrelgames/modkit/internal/patch"

// Hooks is the extension surface a mod author implements. Every method has
// a no-op default in BaseHooks; authors embed it and override what they
// need.
type Hooks interface {
	// OnEarlyInit runs during the early-initialize phase, before any
	// patching. Errors propagate to the host: this phase is assumed
	// side-effect-light and a failure here drops the mod from the pass.
	OnEarlyInit(m *Mod) error
	// OnApplicationStart runs first in the initialize phase.
	OnApplicationStart(m *Mod)
	// OnInit runs after OnApplicationStart.
	OnInit(m *Mod)
	// PatchGroups declares the mod's patch units, one per target type.
	PatchGroups() []patch.Group
	// Call handles a named cross-mod operation. ok is false when the mod
	// has no result for the operation.
	Call(op string, params ...any) (result any, ok bool)
}

// BaseHooks is the no-op implementation of Hooks.
type BaseHooks struct{}

func (BaseHooks) OnEarlyInit(*Mod) error       { return nil }
func (BaseHooks) OnApplicationStart(*Mod)      {}
func (BaseHooks) OnInit(*Mod)                  {}
func (BaseHooks) PatchGroups() []patch.Group   { return nil }
func (BaseHooks) Call(string, ...any) (any, bool) {
	return nil, false
}
