// Package callhub is the best-effort cross-mod call surface: look a mod up
// by name, dispatch a named operation, and report absence rather than fail.
package callhub

import (
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/kestrelgames/modkit/internal/logging"
	"github.com/kestrelgames/modkit/internal/mods"
)

// maxSuggestionDistance bounds how far a name can be from a registered mod
// before the hub stops suggesting it.
const maxSuggestionDistance = 3

// Hub indexes loaded mods by display name.
type Hub struct {
	mu     sync.RWMutex
	byName map[string]*mods.Mod
	logger *logging.Logger
}

// New returns an empty hub.
func New(logger *logging.Logger) *Hub {
	return &Hub{byName: map[string]*mods.Mod{}, logger: logger}
}

// Register indexes a mod under its display name. Later registrations with
// the same name win; mod names are expected to be unique per session.
func (h *Hub) Register(m *mods.Mod) {
	if m == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byName[m.DisplayName()] = m
}

// Names returns the registered mod names, sorted.
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.byName))
	for name := range h.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches op to the named mod. ok is false when the mod is unknown
// or has no result for the operation; an unknown mod name additionally logs
// the closest registered name, which catches most typos in practice.
func (h *Hub) Call(modName, op string, params ...any) (any, bool) {
	h.mu.RLock()
	target, found := h.byName[modName]
	h.mu.RUnlock()
	if !found {
		if suggestion, ok := h.closest(modName); ok {
			h.logger.Warnf("call %s.%s: mod not loaded (did you mean %q?)", modName, op, suggestion)
		} else {
			h.logger.Warnf("call %s.%s: mod not loaded", modName, op)
		}
		return nil, false
	}
	return target.Call(op, params...)
}

func (h *Hub) closest(name string) (string, bool) {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range h.Names() {
		d := levenshtein.ComputeDistance(name, candidate)
		if d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best, best != ""
}
