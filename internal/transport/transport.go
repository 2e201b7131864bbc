// Package transport carries Go callbacks across the cgo boundary.
//
// Objective-C cannot hold a Go func value, so a callback is parked in a
// registry and native code is handed a one-word Handle instead. The native
// side stores the handle, passes it back on every notification and never
// frees it; only the Go owner calls Destroy.
package transport

import (
	"fmt"
	"sync"

	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
)

// Callback is the shape of every transported closure.
type Callback func(appearance.Appearance)

// Handle is an opaque, FFI-safe reference to a registered Callback.
// The zero Handle is never issued.
type Handle uintptr

// Registry owns encoded callbacks until they are destroyed.
type Registry struct {
	mu        sync.Mutex
	next      Handle
	callbacks map[Handle]Callback
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{callbacks: make(map[Handle]Callback)}
}

// Default is the registry the native entry points resolve handles against.
var Default = NewRegistry()

// Encode takes ownership of cb and returns a handle for it.
func (r *Registry) Encode(cb Callback) Handle {
	if cb == nil {
		panic("transport: encode of nil callback")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	h := r.next
	r.callbacks[h] = cb
	return h
}

// Invoke calls the callback behind h with a. It reports false if h is not
// live, which happens only when a late native delivery races teardown.
//
// The registry lock is not held while the callback runs, so a callback may
// encode or destroy other handles.
func (r *Registry) Invoke(h Handle, a appearance.Appearance) bool {
	r.mu.Lock()
	cb, ok := r.callbacks[h]
	r.mu.Unlock()

	if !ok {
		return false
	}
	cb(a)
	return true
}

// Destroy drops the callback behind h. Destroying a handle twice is a
// programming error and panics.
func (r *Registry) Destroy(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.callbacks[h]; !ok {
		panic(fmt.Sprintf("transport: destroy of unknown or already destroyed handle %d", h))
	}
	delete(r.callbacks, h)
}

// Live reports whether h has been encoded and not yet destroyed.
func (r *Registry) Live(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.callbacks[h]
	return ok
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.callbacks)
}

// Encode registers cb with the Default registry.
func Encode(cb Callback) Handle {
	return Default.Encode(cb)
}

// Invoke resolves h against the Default registry.
func Invoke(h Handle, a appearance.Appearance) bool {
	return Default.Invoke(h, a)
}

// Destroy releases h from the Default registry.
func Destroy(h Handle) {
	Default.Destroy(h)
}
