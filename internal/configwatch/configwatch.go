// Package configwatch reloads the shell command when the config file changes.
package configwatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/mmilitzer/dark-mode-notify/pkg/config"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher is an oklog/run actor. It watches the directory holding the config
// file, since editors usually replace the file rather than write to it.
type Watcher struct {
	path     string
	current  string
	onChange func(command string)

	watcher     *fsnotify.Watcher
	slogger     *slog.Logger
	interrupted atomic.Bool
	interrupt   chan struct{}
}

// New starts watching path. current is the command in effect now; onChange
// is called from Execute's goroutine with each different command read back.
func New(path, current string, onChange func(string), slogger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:      path,
		current:   current,
		onChange:  onChange,
		watcher:   w,
		slogger:   slogger.With("component", "config_watcher", "path", path),
		interrupt: make(chan struct{}),
	}, nil
}

// Execute reloads the command on every relevant change until interrupted.
func (w *Watcher) Execute() error {
	defer w.watcher.Close()

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&relevantOps == 0 {
				continue
			}
			w.reload(ev.Op)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.slogger.Log(context.TODO(), slog.LevelWarn,
				"watching config file",
				"err", err,
			)
		case <-w.interrupt:
			return nil
		}
	}
}

func (w *Watcher) reload(op fsnotify.Op) {
	command, err := config.LoadCommand(w.path)
	if err != nil {
		w.slogger.Log(context.TODO(), slog.LevelWarn,
			"could not reload config, keeping previous command",
			"op", op.String(),
			"err", err,
		)
		return
	}
	if command == w.current {
		return
	}

	w.slogger.Log(context.TODO(), slog.LevelInfo,
		"command changed",
		"op", op.String(),
		"command", command,
	)
	w.current = command
	w.onChange(command)
}

// Interrupt makes Execute return and closes the watcher.
func (w *Watcher) Interrupt(_ error) {
	if w.interrupted.Swap(true) {
		return
	}
	close(w.interrupt)
}
