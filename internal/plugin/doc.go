// Package plugin provides the plugin runtime for Markwright.
//
// The runtime has four parts:
//
//   - Discovery: enumerates available plugin factories from ordered sources.
//     Built-ins come first (in declaration order), then externally-registered
//     plugins (registry registration order, then on-disk Lua packages in
//     directory order). Two consecutive Discover calls against an unchanged
//     world yield identical orderings, so UI lists and persisted state keys
//     stay stable across runs.
//
//   - StateStore: a persisted plugin_id -> enabled map, stored as one JSON
//     object under a single settings key. An absent key means "use default";
//     a caller-supplied default-enabled set pre-enables built-ins without
//     marking them explicitly enabled.
//
//   - Manager: drives the per-id lifecycle (Discovered -> Active -> back on
//     deactivation), invokes the optional OnLoad/OnReady hooks with their
//     once-per-process / once-per-session guarantees, and aggregates the
//     actions contributed by enabled plugins for menu rendering.
//
//   - Watcher: an fsnotify nudge that tells the host a Reload is warranted
//     after plugin directories change (e.g. when an install finishes).
//
// # Error containment
//
// Third-party plugin code must never crash the host. Every call across the
// plugin boundary (factory invocation, OnLoad, Activate, Deactivate,
// RegisterActions, OnReady, action handlers) is wrapped so that a returned
// error or panic marks that one plugin as failed for that one step and
// nothing else. Omission is discovery's only failure signal. Construction of
// the Manager and StateStore themselves is the exception: a nil store or
// discovery is host misconfiguration and fails loudly.
//
// # Ownership
//
// Reload is owned by the startup-sequencing component, never by the window
// that merely attaches a manager. Attaching binds the capability facade (and
// may rebuild menus) but must not itself reload; that keeps boot order
// deterministic regardless of which UI components exist yet.
package plugin
