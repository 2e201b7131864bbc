// Package signals turns SIGINT and SIGTERM into a graceful shutdown.
package signals

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Listener is an oklog/run actor that returns from Execute when the process
// is asked to stop. The watcher then tears down its subscription before
// exiting instead of dying mid-delivery.
type Listener struct {
	sigChannel  chan os.Signal
	slogger     *slog.Logger
	interrupted atomic.Bool
	interrupt   chan struct{}
}

// NewListener returns a Listener for SIGINT and SIGTERM.
func NewListener(slogger *slog.Logger) *Listener {
	return &Listener{
		sigChannel: make(chan os.Signal, 1),
		slogger:    slogger.With("component", "signal_listener"),
		interrupt:  make(chan struct{}),
	}
}

// Execute blocks until a signal arrives or the listener is interrupted.
func (l *Listener) Execute() error {
	signal.Notify(l.sigChannel, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(l.sigChannel)

	select {
	case sig := <-l.sigChannel:
		l.slogger.Log(context.TODO(), slog.LevelInfo,
			"beginning shutdown via signal",
			"signal_received", sig,
		)
	case <-l.interrupt:
	}
	return nil
}

// Interrupt makes Execute return. Only the first call has an effect.
func (l *Listener) Interrupt(_ error) {
	if l.interrupted.Swap(true) {
		return
	}
	close(l.interrupt)
}
