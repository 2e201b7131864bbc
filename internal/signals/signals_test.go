package signals

import (
	"errors"
	"io"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSignalEndsExecute(t *testing.T) {
	t.Parallel()

	l := NewListener(discardLogger())
	done := make(chan error, 1)
	go func() { done <- l.Execute() }()

	// Delivered straight to the channel so the test process is never signalled.
	l.sigChannel <- syscall.SIGTERM

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not return after a signal")
	}
}

func TestInterruptEndsExecute(t *testing.T) {
	t.Parallel()

	l := NewListener(discardLogger())
	done := make(chan error, 1)
	go func() { done <- l.Execute() }()

	l.Interrupt(errors.New("stopping"))
	l.Interrupt(errors.New("stopping again"))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not return after interrupt")
	}
}
