// Package builtin contains the plugins that ship with the application.
// Built-ins go through the same discovery and lifecycle as external plugins;
// the only difference is that their factories are compiled in and enumerated
// first, in declaration order.
package builtin
