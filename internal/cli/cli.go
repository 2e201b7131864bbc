// Package cli wires flags, logging and the side actors around a bridge
// session. It is the whole program minus the choice of native host.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/run"

	"github.com/mmilitzer/dark-mode-notify/internal/action"
	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
	"github.com/mmilitzer/dark-mode-notify/internal/appnap"
	"github.com/mmilitzer/dark-mode-notify/internal/bridge"
	"github.com/mmilitzer/dark-mode-notify/internal/configwatch"
	"github.com/mmilitzer/dark-mode-notify/internal/logging"
	"github.com/mmilitzer/dark-mode-notify/internal/quit"
	"github.com/mmilitzer/dark-mode-notify/internal/signals"
	"github.com/mmilitzer/dark-mode-notify/pkg/config"
)

// Name is the program name used in usage and error messages.
const Name = "dark-mode-notify"

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// How long a finished session waits for commands it started.
const childWait = 5 * time.Second

// Run executes the program and returns its exit code. It must be called on
// the thread that owns host's event loop; everything else runs in a run
// group on other goroutines. stdin may be nil.
func Run(ctx context.Context, args []string, host bridge.Host, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(Name, args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", Name, err)
		return ExitUsage
	}

	slogger, closer := logging.New(logging.Options{
		Dir:    cfg.LogDir,
		Debug:  cfg.Debug,
		Stderr: stderr,
	})
	defer closer.Close()
	slog.SetDefault(slogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.PreventAppNap {
		release, err := appnap.Prevent("watching for appearance changes", slogger)
		if err != nil {
			// Continue anyway, napping only delays notifications.
			slogger.Log(ctx, slog.LevelWarn,
				"could not prevent app nap",
				"err", err,
			)
		} else {
			defer release()
		}
	}

	act := action.New(cfg.Command, stdout, stderr, slogger)
	cb := func(a appearance.Appearance) {
		slogger.Log(context.TODO(), slog.LevelDebug,
			"appearance reported",
			"appearance", a,
		)
		act.Handle(a)
		if cfg.Exit {
			cancel()
		}
	}

	runGroup := newRunGroup(ctx, cancel, cfg, act, stdin, slogger)
	groupDone := make(chan error, 1)
	go func() {
		// The bridge needs this thread for the native loop.
		groupDone <- runGroup.Run()
	}()

	runErr := bridge.Run(ctx, host, bridge.Options{
		TriggerInitially: cfg.TriggerInitially(),
		Slogger:          slogger,
	}, cb)

	cancel()
	if err := <-groupDone; err != nil {
		slogger.Log(context.TODO(), slog.LevelWarn,
			"running run group",
			"err", err,
		)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), childWait)
	defer waitCancel()
	if err := act.Wait(waitCtx); err != nil {
		slogger.Log(context.TODO(), slog.LevelWarn,
			"leaving commands running",
			"err", err,
		)
	}

	if runErr != nil {
		slogger.Log(context.TODO(), slog.LevelError,
			"watching appearance",
			"err", runErr,
		)
		fmt.Fprintf(stderr, "%s: %v\n", Name, runErr)
		return ExitError
	}
	return ExitOK
}

// newRunGroup builds the actors that can end a session. The first one to
// return interrupts the rest, and the context actor turns that into cancel.
func newRunGroup(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, act *action.Action, stdin io.Reader, slogger *slog.Logger) *run.Group {
	var runGroup run.Group

	runGroup.Add(func() error {
		<-ctx.Done()
		return nil
	}, func(error) {
		cancel()
	})

	sigListener := signals.NewListener(slogger)
	runGroup.Add(sigListener.Execute, sigListener.Interrupt)

	if stdin != nil && !cfg.NoQuit {
		quitListener := quit.NewListener(stdin, slogger)
		runGroup.Add(quitListener.Execute, quitListener.Interrupt)
	}

	if cfg.ConfigFile != "" && !cfg.CommandPinned {
		watcher, err := configwatch.New(cfg.ConfigFile, cfg.Command, act.SetCommand, slogger)
		if err != nil {
			slogger.Log(ctx, slog.LevelDebug,
				"not watching config file",
				"err", err,
			)
		} else {
			runGroup.Add(watcher.Execute, watcher.Interrupt)
		}
	}

	return &runGroup
}
