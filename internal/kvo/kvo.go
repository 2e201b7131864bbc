// Package kvo wraps native key-value observing behind a Go subscription.
//
// A Subscription owns exactly one transported callback and one native
// observer proxy. It refers to the observed object only weakly, so it never
// keeps that object alive, and Close is the single place teardown happens.
package kvo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
	"github.com/mmilitzer/dark-mode-notify/internal/transport"
)

// ErrInvalidTarget is returned when asked to observe a nil object.
var ErrInvalidTarget = errors.New("kvo: cannot observe a nil target")

// Options mirrors NSKeyValueObservingOptions.
type Options uint

const (
	OptionNew Options = 1 << iota
	OptionOld
	OptionInitial
	OptionPrior
)

// Observer is the native proxy registered with a Source on behalf of one
// subscription. The subscription holds it strongly until Close.
type Observer interface {
	Release()
}

// Source is a native object that emits property-change notifications.
type Source interface {
	// AddObserver creates a proxy that forwards changes of keyPath to h and
	// registers it with the source.
	AddObserver(h transport.Handle, keyPath string, opts Options) (Observer, error)
	RemoveObserver(o Observer, keyPath string)
	// Weak returns a reference that does not keep the source alive.
	Weak() WeakRef
}

// WeakRef is a non-owning reference to a Source.
type WeakRef interface {
	// Load returns the source, or nil if it has been deallocated. When src is
	// non-nil, release must be called once the caller is done with it.
	Load() (src Source, release func())
	// Free disposes of the reference itself.
	Free()
}

// Subscription is one active observation registration.
type Subscription struct {
	id       string
	keyPath  string
	target   WeakRef
	observer Observer
	handle   transport.Handle
	registry *transport.Registry

	// mu serializes delivery against teardown. Deliveries hold the read
	// lock for the length of the user callback.
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// Observe registers cb for changes to keyPath on target.
//
// Nothing is encoded or registered when target is nil. If registration
// fails the transported callback is destroyed before returning.
func Observe(target Source, keyPath string, opts Options, cb transport.Callback) (*Subscription, error) {
	if target == nil {
		return nil, ErrInvalidTarget
	}
	if cb == nil {
		return nil, errors.New("kvo: nil callback")
	}

	s := &Subscription{
		id:       uuid.NewString(),
		keyPath:  keyPath,
		registry: transport.Default,
	}
	s.handle = s.registry.Encode(s.guard(cb))

	observer, err := target.AddObserver(s.handle, keyPath, opts)
	if err != nil {
		s.registry.Destroy(s.handle)
		return nil, fmt.Errorf("adding observer for %s: %w", keyPath, err)
	}
	s.observer = observer
	s.target = target.Weak()

	return s, nil
}

func (s *Subscription) guard(cb transport.Callback) transport.Callback {
	return func(a appearance.Appearance) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		if s.closed {
			return
		}
		cb(a)
	}
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string { return s.id }

// KeyPath is the observed property.
func (s *Subscription) KeyPath() string { return s.keyPath }

// Handle is the transport handle the native proxy was given.
func (s *Subscription) Handle() transport.Handle { return s.handle }

// Close unregisters the observer, if the target still exists, and then
// destroys the transported callback. It is safe to call more than once but
// must not be called from inside the callback.
func (s *Subscription) Close() {
	s.once.Do(s.teardown)
}

func (s *Subscription) teardown() {
	// Waits out any delivery in progress; none start after this.
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if src, release := s.target.Load(); src != nil {
		src.RemoveObserver(s.observer, s.keyPath)
		release()
	} else {
		slog.Default().Log(context.TODO(), slog.LevelDebug,
			"observed object already gone, skipping unregister",
			"component", "kvo",
			"subscription", s.id,
			"key_path", s.keyPath,
		)
	}

	s.observer.Release()
	s.registry.Destroy(s.handle)
	s.target.Free()
}

// Deliver is the native entry point for a change notification. token is the
// best-match appearance name the proxy resolved, or "" if there was none.
func Deliver(h transport.Handle, token string) {
	if !transport.Invoke(h, appearance.Classify(token)) {
		slog.Default().Log(context.TODO(), slog.LevelWarn,
			"dropping change notification for released handle",
			"component", "kvo",
			"handle", uint64(h),
		)
	}
}
