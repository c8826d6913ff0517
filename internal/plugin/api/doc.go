// Package api defines the stable contract between Markwright and its plugins.
//
// Everything a plugin can see of the host lives here: the metadata and action
// value types, the mandatory Plugin lifecycle contract, the optional hook
// interfaces, and the API capability facade the host hands to plugin code.
// The package is deliberately dependency-free so that third-party plugins
// compile against a narrow, versioned surface and nothing else.
//
// # Versioning
//
// Version is a MAJOR.MINOR string. The MAJOR component is bumped on breaking
// changes to any type or interface in this package. Plugins declare a
// compatible range via Meta.RequiresPluginAPI; hosts may validate strictly or
// loosely.
//
// # Lifecycle
//
// A plugin id moves between two states, driven by the manager:
//
//	Discovered -> Activate(api) -> Active
//	Active -> Deactivate() -> Discovered
//
// Two optional hooks refine the lifecycle:
//
//   - OnLoad(api) runs at most once per process for a plugin id, before its
//     first Activate. Use it for settings reads and one-time initialization.
//   - OnReady(api) runs at most once per activation session, after the host
//     UI is first shown. Use it for deferred work that needs a visible window.
//
// The manager discovers hooks by capability check (interface assertion), not
// by base type: third-party plugins cannot be forced into a host hierarchy.
//
// # Error containment
//
// The host treats every call into plugin code as untrusted: returned errors
// and panics alike mark that one plugin as failed for that one step, and the
// host carries on. Plugins should still return errors rather than panic.
package api
