// Package content defines the registrable unit owned by a mod: a tower, an
// upgrade, or any other payload the host learns about during the
// registration phase.
package content

import "fmt"

// Owner is the narrow view of a mod that content items hold as their
// back-reference. The concrete type lives in the mods package.
type Owner interface {
	DisplayName() string
	IDPrefix() string
}

// Item is implemented by every registrable content unit. Lifecycle:
// constructed, added to a mod, optionally Load()ed, then Register()ed
// exactly once during the registration phase. Items added after that phase
// must be registered by whoever added them.
type Item interface {
	// Name is the stable identifier used for registry lookup and errors.
	Name() string
	Owner() Owner
	SetOwner(Owner)
	// Load performs optional preparation before registration.
	Load() error
	// Register makes the item live in the host.
	Register() error
}

// Base provides the identity and ownership plumbing shared by items.
// Embed it and override Register (and Load when preparation is needed).
type Base struct {
	name  string
	owner Owner
}

// NewBase seeds the helper with the item's stable name.
func NewBase(name string) Base {
	return Base{name: name}
}

// Name implements Item.Name.
func (b *Base) Name() string { return b.name }

// Owner implements Item.Owner.
func (b *Base) Owner() Owner { return b.owner }

// SetOwner implements Item.SetOwner. Called once at add time.
func (b *Base) SetOwner(owner Owner) { b.owner = owner }

// Load implements Item.Load as a no-op.
func (b *Base) Load() error { return nil }

// Register implements Item.Register as a no-op. Items with host-visible
// side effects override this.
func (b *Base) Register() error { return nil }

// ID returns the item's prefixed identifier, or the bare name when the
// item has not been adopted by a mod yet.
func (b *Base) ID() string {
	if b.owner == nil {
		return b.name
	}
	return fmt.Sprintf("%s%s", b.owner.IDPrefix(), b.name)
}
