//go:build darwin

package cocoa

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework Foundation
#include <stdlib.h>
#include "cocoa_darwin.h"
*/
import "C"
import (
	"errors"
	"unsafe"

	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
	"github.com/mmilitzer/dark-mode-notify/internal/transport"
)

//export dmnAppearanceChanged
func dmnAppearanceChanged(handle C.uintptr_t, name *C.char) {
	kvo.Deliver(transport.Handle(handle), C.GoString(name))
}

func sharedApplication() unsafe.Pointer {
	return C.dmn_app_shared()
}

func prohibitActivation(app unsafe.Pointer) {
	if app == nil {
		return
	}
	C.dmn_app_prohibit_activation(app)
}

func appearanceName(app unsafe.Pointer) string {
	if app == nil {
		return ""
	}
	name := C.dmn_app_appearance_name(app)
	if name == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(name))
	return C.GoString(name)
}

func runLoop(app unsafe.Pointer) {
	C.dmn_app_run(app)
}

func stopLoop(app unsafe.Pointer) {
	C.dmn_app_stop(app)
}

// liveObservers counts DMNAppearanceObserver instances not yet deallocated.
func liveObservers() int {
	return int(C.dmn_observer_live())
}

// source is an NSObject observed through DMNAppearanceObserver proxies.
type source struct {
	ptr unsafe.Pointer
}

func newSource(ptr unsafe.Pointer) kvo.Source {
	return &source{ptr: ptr}
}

func (s *source) AddObserver(h transport.Handle, keyPath string, opts kvo.Options) (kvo.Observer, error) {
	ckey := C.CString(keyPath)
	defer C.free(unsafe.Pointer(ckey))

	p := C.dmn_observer_add(s.ptr, ckey, C.ulong(opts), C.uintptr_t(h))
	if p == nil {
		return nil, errors.New("cocoa: could not allocate observer proxy")
	}
	return &observer{ptr: p}, nil
}

func (s *source) RemoveObserver(o kvo.Observer, keyPath string) {
	obs, ok := o.(*observer)
	if !ok {
		return
	}

	ckey := C.CString(keyPath)
	defer C.free(unsafe.Pointer(ckey))

	C.dmn_observer_remove(s.ptr, obs.ptr, ckey)
}

func (s *source) Weak() kvo.WeakRef {
	return &weakRef{slot: C.dmn_weak_new(s.ptr)}
}

type observer struct {
	ptr unsafe.Pointer
}

func (o *observer) Release() {
	C.dmn_release(o.ptr)
}

// weakRef is a heap slot managed with objc_storeWeak.
type weakRef struct {
	slot unsafe.Pointer
}

func (w *weakRef) Load() (kvo.Source, func()) {
	p := C.dmn_weak_load(w.slot)
	if p == nil {
		return nil, nil
	}
	return &source{ptr: p}, func() { C.dmn_release(p) }
}

func (w *weakRef) Free() {
	C.dmn_weak_free(w.slot)
}
