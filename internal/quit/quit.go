// Package quit listens for "quit" typed on stdin.
package quit

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

// Word is the line that ends the program when typed on stdin.
const Word = "quit"

// Listener is an oklog/run actor. Execute returns once a line reading "quit"
// arrives on the input or Interrupt is called. EOF does not end it.
type Listener struct {
	input       io.Reader
	slogger     *slog.Logger
	interrupted atomic.Bool
	interrupt   chan struct{}
}

// NewListener returns a Listener reading lines from input.
func NewListener(input io.Reader, slogger *slog.Logger) *Listener {
	return &Listener{
		input:     input,
		slogger:   slogger.With("component", "quit_listener"),
		interrupt: make(chan struct{}),
	}
}

// Execute blocks until the quit word is read or the listener is interrupted.
func (l *Listener) Execute() error {
	quit := make(chan struct{})

	// Reads block and can't be cancelled, so the scanner runs on its own and
	// is abandoned on interrupt.
	go func() {
		scanner := bufio.NewScanner(l.input)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == Word {
				close(quit)
				return
			}
		}
		l.slogger.Log(context.TODO(), slog.LevelDebug,
			"input closed, quit word no longer available",
			"err", scanner.Err(),
		)
	}()

	select {
	case <-quit:
		l.slogger.Log(context.TODO(), slog.LevelInfo,
			"beginning shutdown via quit command",
		)
		return nil
	case <-l.interrupt:
		return nil
	}
}

// Interrupt makes Execute return. Only the first call has an effect.
func (l *Listener) Interrupt(_ error) {
	if l.interrupted.Swap(true) {
		return
	}
	close(l.interrupt)
}
