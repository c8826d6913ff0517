package plugin

import (
	"errors"
	"fmt"
)

// Runtime construction errors. These propagate: a malformed manager or state
// store is host misconfiguration, detected before any plugin code runs.
var (
	// ErrNilSettings is returned when a state store is built without a
	// settings backend.
	ErrNilSettings = errors.New("plugin: settings store is nil")

	// ErrNilDiscovery is returned when a manager is built without discovery.
	ErrNilDiscovery = errors.New("plugin: discovery is nil")

	// ErrNilStateStore is returned when a manager is built without a state
	// store.
	ErrNilStateStore = errors.New("plugin: state store is nil")

	// ErrNilFactory is returned when a registration carries no factory.
	ErrNilFactory = errors.New("plugin: factory is nil")
)

// guard invokes fn, converting a panic out of plugin-authored code into an
// error. It is the containment boundary used for every call across the
// plugin boundary.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panic: %v", r)
		}
	}()
	return fn()
}
