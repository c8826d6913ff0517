package plugin

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/markwright/internal/settings"
)

// SettingsKeyEnabledMap is the well-known settings key holding the plugin
// enabled map, a single JSON object {"<plugin_id>": true|false, ...}.
const SettingsKeyEnabledMap = "plugins/enabled_map"

// StateStore persists the per-plugin enabled flag.
//
// Resolution order for a lookup: the explicitly persisted value if present,
// then membership in the default-enabled set (used to pre-enable built-ins),
// then the caller's fallback. All returns only explicitly persisted entries,
// so the UI can distinguish what the user toggled from what is merely
// defaulted.
//
// Corrupt persisted data never raises: anything that is not a JSON object is
// read as an empty map.
type StateStore struct {
	settings settings.Store
	defaults map[string]struct{}
}

// NewStateStore creates a store over the given settings backend. The
// defaultEnabled ids are snapshotted; later mutation of the caller's slice
// does not leak in.
func NewStateStore(store settings.Store, defaultEnabled ...string) (*StateStore, error) {
	if store == nil {
		return nil, ErrNilSettings
	}

	defaults := make(map[string]struct{}, len(defaultEnabled))
	for _, id := range defaultEnabled {
		defaults[id] = struct{}{}
	}

	return &StateStore{settings: store, defaults: defaults}, nil
}

// Enabled reports whether the plugin is enabled, defaulting to false.
func (s *StateStore) Enabled(id string) bool {
	return s.EnabledOr(id, false)
}

// EnabledOr reports whether the plugin is enabled, using fallback when the
// id is neither persisted nor in the default-enabled set.
func (s *StateStore) EnabledOr(id string, fallback bool) bool {
	raw := s.readRaw()
	var found, value bool
	raw.ForEach(func(k, v gjson.Result) bool {
		if k.String() == id {
			found = true
			value = v.Bool()
			return false
		}
		return true
	})
	if found {
		return value
	}
	if _, ok := s.defaults[id]; ok {
		return true
	}
	return fallback
}

// SetEnabled persists the flag immediately, overwriting any prior value.
func (s *StateStore) SetEnabled(id string, enabled bool) {
	raw := s.readRaw().Raw
	out, err := sjson.Set(raw, escapeKey(id), enabled)
	if err != nil {
		// Unrepresentable key for path-style writes; rebuild the object.
		m := s.All()
		m[id] = enabled
		data, err := json.Marshal(m)
		if err != nil {
			return
		}
		out = string(data)
	}
	s.settings.SetRaw(SettingsKeyEnabledMap, out)
}

// All returns the explicitly persisted entries only. Plugins enabled solely
// via the default-enabled set are deliberately excluded.
func (s *StateStore) All() map[string]bool {
	out := make(map[string]bool)
	s.readRaw().ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.Bool()
		return true
	})
	return out
}

// IDs returns the explicitly persisted plugin ids, sorted.
func (s *StateStore) IDs() []string {
	m := s.All()
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// readRaw loads the persisted map, sanitizing anything that is not a JSON
// object down to an empty one.
func (s *StateStore) readRaw() gjson.Result {
	raw := s.settings.GetRaw(SettingsKeyEnabledMap, "{}")
	if !gjson.Valid(raw) {
		return gjson.Parse("{}")
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return gjson.Parse("{}")
	}
	return parsed
}

// keyEscaper protects path metacharacters in plugin ids (reverse-DNS ids
// contain dots) so sjson treats the id as one literal object key.
var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
)

func escapeKey(id string) string {
	return keyEscaper.Replace(id)
}
