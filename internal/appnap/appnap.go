// Package appnap keeps macOS from throttling the watcher while it sits in the
// background. A napping process still receives appearance notifications, but
// late, and the command runs seconds after the switch.
package appnap

import (
	"context"
	"log/slog"
	"sync"
)

// Prevent holds an App Nap activity until release is called. release is
// idempotent. On other platforms it does nothing.
func Prevent(reason string, slogger *slog.Logger) (release func(), err error) {
	slogger = slogger.With("component", "appnap")

	end, err := beginActivity(reason)
	if err != nil {
		return nil, err
	}
	slogger.Log(context.TODO(), slog.LevelDebug,
		"app nap prevention enabled",
		"reason", reason,
	)

	var once sync.Once
	return func() {
		once.Do(func() {
			end()
			slogger.Log(context.TODO(), slog.LevelDebug,
				"app nap prevention disabled",
			)
		})
	}, nil
}
