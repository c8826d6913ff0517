package api

import (
	"errors"
	"fmt"
	"regexp"
)

// Version is the plugin API version (MAJOR.MINOR).
// Bump MAJOR when introducing breaking changes to these contracts.
const Version = "1.1"

// Meta describes a plugin. All fields are set once by the plugin author and
// never mutated by the host.
//
// ID must be globally unique and stable over time. Use reverse-DNS or a
// clear namespace: "org.markwright.theme", "com.example.uppercase". It is the
// identity key for the state store, the active set, and the plugins dialog.
type Meta struct {
	ID          string // e.g. "org.markwright.theme"
	Name        string // human-friendly display name
	Version     string // plugin version (semver recommended)
	Description string
	Author      string
	Homepage    string
	License     string // SPDX identifier

	// RequiresApp and RequiresPluginAPI are version range strings. The host
	// may validate them strictly or loosely; they are contract, not policy.
	RequiresApp       string // e.g. ">=0.0.0"
	RequiresPluginAPI string // e.g. "==1.*"
}

// Meta validation errors.
var (
	ErrMetaMissingID      = errors.New("meta: id is required")
	ErrMetaInvalidID      = errors.New("meta: id must be a dotted lowercase identifier")
	ErrMetaMissingName    = errors.New("meta: name is required")
	ErrMetaMissingVersion = errors.New("meta: version is required")
)

// idPattern validates plugin ids (reverse-DNS style, at least one dot).
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*(\.[a-z0-9][a-z0-9-]*)+$`)

// Validate checks that the metadata carries a usable identity.
func (m Meta) Validate() error {
	if m.ID == "" {
		return ErrMetaMissingID
	}
	if !idPattern.MatchString(m.ID) {
		return fmt.Errorf("%w: %s", ErrMetaInvalidID, m.ID)
	}
	if m.Name == "" {
		return ErrMetaMissingName
	}
	if m.Version == "" {
		return ErrMetaMissingVersion
	}
	return nil
}

// String returns "Name vVersion" for logs and dialogs.
func (m Meta) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}
