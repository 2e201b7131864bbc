// Package cocoa exposes the shared NSApplication as a bridge.Host.
//
// Only one Application exists per process. All methods other than StopLoop
// must be called from the main thread, which main locks in init.
package cocoa

import (
	"context"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
)

// Application is the process-wide native application object.
type Application struct {
	ptr        unsafe.Pointer
	background sync.Once
}

var (
	shared     *Application
	sharedOnce sync.Once
)

// Shared returns the process-wide Application, creating the native
// NSApplication on first use.
func Shared() *Application {
	sharedOnce.Do(func() {
		shared = &Application{ptr: sharedApplication()}
	})
	return shared
}

// Background sets the activation policy to prohibited: no dock icon, no
// menu bar. Only the first call has an effect.
func (a *Application) Background() {
	a.background.Do(func() {
		prohibitActivation(a.ptr)
		slog.Default().Log(context.TODO(), slog.LevelDebug,
			"activation policy set to prohibited",
			"component", "cocoa",
		)
	})
}

// Appearance returns the best match of the app's effectiveAppearance.
func (a *Application) Appearance() appearance.Appearance {
	return appearance.Classify(appearanceName(a.ptr))
}

// Target returns NSApp as an observable source, or nil when there is no
// native application.
func (a *Application) Target() kvo.Source {
	if a.ptr == nil {
		return nil
	}
	return newSource(a.ptr)
}

// RunLoop runs [NSApp run] until StopLoop.
func (a *Application) RunLoop() {
	runLoop(a.ptr)
}

// StopLoop asks the run loop to return. It may be called from any goroutine.
func (a *Application) StopLoop() {
	stopLoop(a.ptr)
}
