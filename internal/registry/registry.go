// Package registry provides the process-wide type→instance registry. It is
// an explicit object handed to the components that need lookup rather than
// ambient global state; the load pass is the single writer, with a mutex so
// the progress view may read concurrently.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry associates at most one instance with each dynamic Go type.
type Registry struct {
	mu        sync.RWMutex
	instances map[reflect.Type]any
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{instances: map[reflect.Type]any{}}
}

// Add associates instance with its dynamic type. The association is
// idempotent per type: the first instance wins and later calls for the same
// type are ignored. Reports whether the instance was stored.
func (r *Registry) Add(instance any) bool {
	if instance == nil {
		return false
	}
	key := reflect.TypeOf(instance)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.instances[key]; exists {
		return false
	}
	r.instances[key] = instance
	return true
}

// Get returns the instance registered for the given dynamic type.
func (r *Registry) Get(key reflect.Type) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.instances[key]
	return instance, ok
}

// Len reports the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Types returns the registered type names, sorted for stable diagnostics.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.instances))
	for key := range r.instances {
		names = append(names, key.String())
	}
	sort.Strings(names)
	return names
}

// Lookup resolves the registered instance of type T. When T is an interface
// with several registered implementations, the one whose type name sorts
// first is returned, so repeated lookups agree.
func Lookup[T any](r *Registry) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	key := reflect.TypeOf(zero)
	if key == nil {
		// T is an interface type; scan for an implementation.
		iface := reflect.TypeOf((*T)(nil)).Elem()
		r.mu.RLock()
		defer r.mu.RUnlock()
		var match reflect.Type
		for registered := range r.instances {
			if !registered.Implements(iface) {
				continue
			}
			if match == nil || registered.String() < match.String() {
				match = registered
			}
		}
		if match != nil {
			return r.instances[match].(T), true
		}
		return zero, false
	}
	instance, ok := r.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// MustLookup resolves the registered instance of type T or panics. Intended
// for wiring code where a missing registration is a programming error.
func MustLookup[T any](r *Registry) T {
	instance, ok := Lookup[T](r)
	if !ok {
		var zero T
		panic(fmt.Sprintf("registry: no instance registered for %T", zero))
	}
	return instance
}
