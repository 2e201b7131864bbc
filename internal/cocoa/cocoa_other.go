//go:build !darwin

package cocoa

import (
	"sync"
	"unsafe"

	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
)

// There is no NSApplication off macOS: Target is nil, so observing fails
// with kvo.ErrInvalidTarget before the loop would ever run.

var (
	stopCh   = make(chan struct{})
	stopOnce sync.Once
)

func sharedApplication() unsafe.Pointer    { return nil }
func prohibitActivation(unsafe.Pointer)    {}
func appearanceName(unsafe.Pointer) string { return "" }
func newSource(unsafe.Pointer) kvo.Source  { return nil }
func runLoop(unsafe.Pointer)               { <-stopCh }
func stopLoop(unsafe.Pointer)              { stopOnce.Do(func() { close(stopCh) }) }
