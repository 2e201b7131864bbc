// Package kvotest provides an in-memory kvo.Source for tests.
package kvotest

import (
	"errors"
	"sync"

	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
	"github.com/mmilitzer/dark-mode-notify/internal/transport"
)

// ErrRefused is returned by AddObserver when the source is set to refuse.
var ErrRefused = errors.New("kvotest: observer refused")

// Source records registrations and delivers changes through kvo.Deliver,
// the same entry point the native proxy uses.
type Source struct {
	mu          sync.Mutex
	dead        bool
	refuse      bool
	observers   map[*Observer]string
	created     int
	removed     int
	removedLive int // removals that found the observer's handle still live
	released    int
	loads       int
	lastOpts    kvo.Options
}

// NewSource returns a live Source with no observers.
func NewSource() *Source {
	return &Source{observers: make(map[*Observer]string)}
}

// Observer is the fake native proxy.
type Observer struct {
	src      *Source
	handle   transport.Handle
	released bool
}

func (o *Observer) Release() {
	o.src.mu.Lock()
	defer o.src.mu.Unlock()

	if o.released {
		panic("kvotest: observer released twice")
	}
	o.released = true
	o.src.released++
}

// LastOptions returns the options of the most recent registration.
func (s *Source) LastOptions() kvo.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOpts
}

func (s *Source) AddObserver(h transport.Handle, keyPath string, opts kvo.Options) (kvo.Observer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refuse {
		return nil, ErrRefused
	}
	o := &Observer{src: s, handle: h}
	s.observers[o] = keyPath
	s.created++
	s.lastOpts = opts
	return o, nil
}

func (s *Source) RemoveObserver(o kvo.Observer, keyPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fo, ok := o.(*Observer)
	if !ok || s.observers[fo] != keyPath {
		panic("kvotest: removing an observer that was never added")
	}
	delete(s.observers, fo)
	s.removed++
	if transport.Default.Live(fo.handle) {
		s.removedLive++
	}
}

func (s *Source) Weak() kvo.WeakRef {
	return &weakRef{src: s}
}

// Emit delivers token to every observer registered for keyPath, as a
// native change notification would.
func (s *Source) Emit(keyPath, token string) {
	s.mu.Lock()
	var handles []transport.Handle
	for o, kp := range s.observers {
		if kp == keyPath {
			handles = append(handles, o.handle)
		}
	}
	s.mu.Unlock()

	for _, h := range handles {
		kvo.Deliver(h, token)
	}
}

// Destroy simulates the native object being deallocated.
func (s *Source) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dead = true
}

// Refuse makes subsequent AddObserver calls fail.
func (s *Source) Refuse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refuse = true
}

// Stats is a snapshot of what the source has seen.
type Stats struct {
	Registered  int // currently registered observers
	Created     int
	Removed     int
	RemovedLive int // removals made while the observer's handle was still live
	Released    int
	Loads       int // weak loads that found the source alive
}

func (s *Source) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Registered:  len(s.observers),
		Created:     s.created,
		Removed:     s.removed,
		RemovedLive: s.removedLive,
		Released:    s.released,
		Loads:       s.loads,
	}
}

type weakRef struct {
	mu    sync.Mutex
	src   *Source
	freed bool
}

func (w *weakRef) Load() (kvo.Source, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.freed {
		panic("kvotest: load of freed weak reference")
	}

	w.src.mu.Lock()
	defer w.src.mu.Unlock()
	if w.src.dead {
		return nil, nil
	}
	w.src.loads++
	return w.src, func() {}
}

func (w *weakRef) Free() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.freed {
		panic("kvotest: weak reference freed twice")
	}
	w.freed = true
}
