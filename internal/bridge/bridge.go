// Package bridge drives one appearance-watching session on a native host:
// subscribe, optionally report the current value, run the event loop until
// asked to stop, and tear the subscription down.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
	"github.com/mmilitzer/dark-mode-notify/internal/kvo"
	"github.com/mmilitzer/dark-mode-notify/internal/transport"
)

// KeyPath is the NSApplication property whose changes we observe.
const KeyPath = "effectiveAppearance"

// Host is the process-wide native application.
type Host interface {
	// Background puts the application in a no-dock, no-menu-bar mode. It
	// must be idempotent.
	Background()
	// Appearance reads the current appearance synchronously.
	Appearance() appearance.Appearance
	// Target returns the object to observe, or nil if there is none.
	Target() kvo.Source
	// RunLoop blocks in the native event loop until StopLoop is called.
	RunLoop()
	// StopLoop makes RunLoop return. It is safe to call from any goroutine
	// and before RunLoop has started.
	StopLoop()
}

// Options tunes a Run session.
type Options struct {
	// TriggerInitially invokes the callback once with the current value
	// before entering the loop.
	TriggerInitially bool
	Slogger          *slog.Logger
}

// Run watches host for appearance changes until ctx is done. It must be
// called on the thread that owns the native event loop.
//
// cb runs on the event-loop thread; a slow callback delays later deliveries.
// The subscription is torn down before Run returns, whatever stopped the
// loop.
func Run(ctx context.Context, host Host, opts Options, cb transport.Callback) error {
	slogger := opts.Slogger
	if slogger == nil {
		slogger = slog.Default()
	}
	slogger = slogger.With("component", "bridge")

	host.Background()

	sub, err := kvo.Observe(host.Target(), KeyPath, kvo.OptionNew, cb)
	if err != nil {
		return fmt.Errorf("observing %s: %w", KeyPath, err)
	}
	defer func() {
		sub.Close()
		slogger.Log(context.TODO(), slog.LevelDebug,
			"subscription closed",
			"subscription", sub.ID(),
		)
	}()

	slogger.Log(ctx, slog.LevelDebug,
		"subscribed",
		"subscription", sub.ID(),
		"key_path", KeyPath,
		"trigger_initially", opts.TriggerInitially,
	)

	if opts.TriggerInitially {
		cb(host.Appearance())
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slogger.Log(context.TODO(), slog.LevelDebug,
				"stop requested, leaving run loop",
				"err", ctx.Err(),
			)
			host.StopLoop()
		case <-done:
		}
	}()

	// The callback above may already have asked us to stop.
	if ctx.Err() != nil {
		return nil
	}

	host.RunLoop()
	return nil
}
