package plugin

import (
	"github.com/dshills/markwright/internal/plugin/api"
)

// Factory produces a plugin instance. Factories run once per Discover pass;
// the previous pass's instances are dropped.
type Factory func() (api.Plugin, error)

// Instance wraps an already-constructed plugin as a Factory.
func Instance(p api.Plugin) Factory {
	return func() (api.Plugin, error) { return p, nil }
}

// Discovered is one enumerated plugin factory.
type Discovered struct {
	// Factory produces the plugin. Invocation failures are isolated by the
	// manager; a broken factory omits that one plugin.
	Factory Factory

	// EntryPointName identifies the discovery source entry, for diagnostics
	// only (e.g. "builtin:org.markwright.theme", "lua:com.example.upper").
	EntryPointName string

	// DistVersion is the distribution version of the backing package.
	// Empty for built-ins and when resolution failed.
	DistVersion string
}

// Source enumerates plugin factories. Implementations preserve their native
// enumeration order and isolate failures per entry: a broken entry is
// skipped, never raised.
type Source interface {
	Discover() []Discovered
}

// StaticSource is a fixed, ordered list of entries. Built-ins use it: their
// declaration order is their discovery order.
type StaticSource struct {
	entries []Discovered
}

// NewStaticSource creates a source over a fixed entry list.
func NewStaticSource(entries ...Discovered) *StaticSource {
	return &StaticSource{entries: entries}
}

// Discover returns the entries in declaration order.
func (s *StaticSource) Discover() []Discovered {
	out := make([]Discovered, len(s.entries))
	copy(out, s.entries)
	return out
}

// Discovery enumerates all configured sources in order. It never fails:
// a panicking source contributes nothing, and broken entries are omitted by
// their sources.
type Discovery struct {
	sources []Source
	log     Logger
}

// DiscoveryOption configures a Discovery.
type DiscoveryOption func(*Discovery)

// WithSources sets the ordered source list. Built-in sources should come
// first so persisted-state keys and UI ordering stay stable.
func WithSources(sources ...Source) DiscoveryOption {
	return func(d *Discovery) {
		d.sources = sources
	}
}

// WithDiscoveryLogger sets the logger used for skipped-entry diagnostics.
func WithDiscoveryLogger(log Logger) DiscoveryOption {
	return func(d *Discovery) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDiscovery creates a Discovery over the given sources.
func NewDiscovery(opts ...DiscoveryOption) *Discovery {
	d := &Discovery{log: nopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover enumerates every source in order and concatenates the results.
// Each returned slice is a fresh copy; callers that need the enumeration
// twice call Discover twice.
func (d *Discovery) Discover() []Discovered {
	var out []Discovered
	for _, src := range d.sources {
		if src == nil {
			continue
		}
		entries := d.discoverOne(src)
		out = append(out, entries...)
	}
	return out
}

// discoverOne runs a single source with panic containment.
func (d *Discovery) discoverOne(src Source) (entries []Discovered) {
	err := guard(func() error {
		entries = src.Discover()
		return nil
	})
	if err != nil {
		d.log.Warnf("plugin discovery source failed: %v", err)
		return nil
	}
	return entries
}
