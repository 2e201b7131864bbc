// Package bridgetest provides a fake bridge.Host backed by kvotest.
package bridgetest

import (
	"sync"

	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
	"github.com/mmilitzer/dark-mode-notify/internal/kvo/kvotest"
)

// Host runs a fake event loop. Appearance changes made with Set are
// delivered through the same kvo entry point the native proxy uses.
type Host struct {
	Source *kvotest.Source

	mu          sync.Mutex
	current     appearance.Appearance
	noTarget    bool
	backgrounds int

	running  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewHost returns a Host whose current appearance is initial.
func NewHost(initial appearance.Appearance) *Host {
	return &Host{
		Source:  kvotest.NewSource(),
		current: initial,
		running: make(chan struct{}),
		stop:    make(chan struct{}),
	}
}

// WithoutTarget makes Target return nil, like a missing NSApp.
func (h *Host) WithoutTarget() *Host {
	h.noTarget = true
	return h
}

func (h *Host) Background() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backgrounds++
}

func (h *Host) Backgrounds() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backgrounds
}

func (h *Host) Appearance() appearance.Appearance {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *Host) Target() kvo.Source {
	if h.noTarget {
		return nil
	}
	return h.Source
}

func (h *Host) RunLoop() {
	close(h.running)
	<-h.stop
}

func (h *Host) StopLoop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Running is closed once RunLoop has been entered.
func (h *Host) Running() <-chan struct{} {
	return h.running
}

// Set changes the current appearance and notifies observers.
func (h *Host) Set(a appearance.Appearance) {
	h.mu.Lock()
	h.current = a
	h.mu.Unlock()

	token := appearance.AquaName
	if a == appearance.Dark {
		token = appearance.DarkAquaName
	}
	h.Source.Emit("effectiveAppearance", token)
}
