package plugin

import (
	"sync"
)

// EntryPointGroup is the conventional extension-point name third-party
// packages register plugin factories under. It exists so external tooling
// and documentation can refer to one stable group identifier.
const EntryPointGroup = "markwright.plugins"

// VersionFunc resolves a distribution version string for diagnostics.
// Resolution is best-effort: an error (or panic) leaves the version empty.
type VersionFunc func() (string, error)

// Registration is one externally-registered plugin factory.
type Registration struct {
	Name    string
	Factory Factory
	Version VersionFunc // optional
}

// RegisterOption configures a Registration.
type RegisterOption func(*Registration)

// WithVersion attaches a best-effort version resolver to a registration.
func WithVersion(fn VersionFunc) RegisterOption {
	return func(r *Registration) {
		r.Version = fn
	}
}

// Registry is the externally-registered extension point: compiled-in
// packages announce plugin factories here, typically from init. Enumeration
// order is registration order, which is deterministic for a fixed build.
//
// Registry satisfies Source, so discovery can enumerate it directly.
type Registry struct {
	mu      sync.RWMutex
	entries []Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a factory under the given entry-point name. A nil factory is
// ignored: registration is plugin-authored code and must not fail the host.
func (r *Registry) Register(name string, factory Factory, opts ...RegisterOption) {
	if factory == nil {
		return
	}

	reg := Registration{Name: name, Factory: factory}
	for _, opt := range opts {
		opt(&reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, reg)
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Discover enumerates registrations in registration order. Version
// resolution failures are non-fatal; the version is simply absent.
func (r *Registry) Discover() []Discovered {
	r.mu.RLock()
	entries := make([]Registration, len(r.entries))
	copy(entries, r.entries)
	r.mu.RUnlock()

	out := make([]Discovered, 0, len(entries))
	for _, reg := range entries {
		out = append(out, Discovered{
			Factory:        reg.Factory,
			EntryPointName: reg.Name,
			DistVersion:    resolveVersion(reg.Version),
		})
	}
	return out
}

// resolveVersion runs a VersionFunc with containment.
func resolveVersion(fn VersionFunc) string {
	if fn == nil {
		return ""
	}

	var version string
	err := guard(func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return ""
	}
	return version
}

// DefaultRegistry is the process-wide registry enumerated by the default
// discovery wiring. External packages register from init; everything else
// (manager, state store, discovery) is constructed and injected explicitly.
var DefaultRegistry = NewRegistry()

// Register adds a factory to DefaultRegistry.
func Register(name string, factory Factory, opts ...RegisterOption) {
	DefaultRegistry.Register(name, factory, opts...)
}
