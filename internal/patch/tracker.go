package patch

import "sync"

// Tracker records the patching mode chosen for each mod code unit. A unit is
// either self-managed (the mod applies its own patches) or marked for the
// host's deferred auto-patch pass. Marks are sticky for the session.
type Tracker struct {
	mu          sync.Mutex
	selfManaged map[string]struct{}
	auto        map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		selfManaged: map[string]struct{}{},
		auto:        map[string]struct{}{},
	}
}

// SetSelfManaged flags a code unit as applying its own patches. Auto
// patching is never requested for such a unit.
func (t *Tracker) SetSelfManaged(unit string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selfManaged[unit] = struct{}{}
}

// SelfManaged reports whether the unit opted out of auto patching.
func (t *Tracker) SelfManaged(unit string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.selfManaged[unit]
	return ok
}

// MarkAuto requests deferred auto patching for a code unit. The guard is
// idempotent: only the first call for a unit reports true, and a unit that
// is self-managed is never marked.
func (t *Tracker) MarkAuto(unit string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.selfManaged[unit]; ok {
		return false
	}
	if _, ok := t.auto[unit]; ok {
		return false
	}
	t.auto[unit] = struct{}{}
	return true
}

// Auto reports whether the unit is marked for auto patching.
func (t *Tracker) Auto(unit string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.auto[unit]
	return ok
}
