// Package patch models runtime code patching as atomic per-target groups.
// A group is every interception point declared on one target type; it either
// applies whole or fails whole, and one group's failure never blocks the
// next group.
package patch

import (
	"fmt"
	"strings"

	"github.com/kestrelgames/modkit/internal/fault"
	"github.com/kestrelgames/modkit/internal/hostcfg"
)

// SteamOnlyMarker appears in failures caused by the Steam-only native
// dependency. On the Epic storefront build those failures are expected and
// are suppressed instead of reported.
const SteamOnlyMarker = "Steamworks"

// Group is one atomic patch unit declared on a single target type.
type Group struct {
	// Target names the type the group's patches attach to.
	Target string
	// Apply installs every patch in the group.
	Apply func() error
}

// Applier applies one group as a fallible operation.
type Applier interface {
	ApplyGroup(Group) error
}

// FuncApplier runs the group's own Apply function under fault isolation.
// It never panics past its boundary.
type FuncApplier struct{}

// ApplyGroup implements Applier.
func (FuncApplier) ApplyGroup(g Group) error {
	if g.Apply == nil {
		return nil
	}
	if err := fault.Try(g.Apply); err != nil {
		return fmt.Errorf("patch: apply group %s: %w", g.Target, err)
	}
	return nil
}

// Suppressed reports whether a group failure should be silently ignored:
// only on the Epic build, and only when the root message references the
// Steam-only dependency.
func Suppressed(variant hostcfg.Variant, rootMessage string) bool {
	return variant == hostcfg.VariantEpic && strings.Contains(rootMessage, SteamOnlyMarker)
}
