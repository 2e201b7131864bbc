// Package action is what happens when the appearance is reported: either it
// is printed, or a shell command is run with the appearance as its last
// argument.
package action

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/mmilitzer/dark-mode-notify/internal/appearance"
)

const defaultShell = "sh"

// Action reports appearances by printing them or by running a command.
type Action struct {
	command atomic.Pointer[string]
	shell   string

	stdout io.Writer
	stderr io.Writer
	outMu  sync.Mutex

	slogger  *slog.Logger
	children sync.WaitGroup
}

// New returns an Action that runs command, or prints when command is empty.
// Children inherit stdout and stderr.
func New(command string, stdout, stderr io.Writer, slogger *slog.Logger) *Action {
	a := &Action{
		shell:   defaultShell,
		stdout:  stdout,
		stderr:  stderr,
		slogger: slogger.With("component", "action"),
	}
	a.SetCommand(command)
	return a
}

// SetCommand replaces the command used for later appearances. It is safe to
// call while Handle runs.
func (a *Action) SetCommand(command string) {
	a.command.Store(&command)
}

// Command returns the command in effect, "" when printing.
func (a *Action) Command() string {
	return *a.command.Load()
}

// Handle reports v. It never blocks on a child process.
func (a *Action) Handle(v appearance.Appearance) {
	command := a.Command()
	if command == "" {
		a.print(v)
		return
	}
	a.spawn(command, v)
}

func (a *Action) print(v appearance.Appearance) {
	a.outMu.Lock()
	defer a.outMu.Unlock()

	if _, err := fmt.Fprintln(a.stdout, v); err != nil {
		a.slogger.Log(context.TODO(), slog.LevelWarn,
			"writing appearance",
			"err", err,
		)
	}
}

func (a *Action) spawn(command string, v appearance.Appearance) {
	cmd := exec.Command(a.shell, "-c", command+" "+v.String())
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr

	if err := cmd.Start(); err != nil {
		// A broken command must not stop the watcher.
		a.slogger.Log(context.TODO(), slog.LevelDebug,
			"could not start command",
			"command", command,
			"appearance", v,
			"err", err,
		)
		return
	}

	a.slogger.Log(context.TODO(), slog.LevelDebug,
		"started command",
		"command", command,
		"appearance", v,
		"pid", cmd.Process.Pid,
	)

	a.children.Add(1)
	go func() {
		defer a.children.Done()
		err := cmd.Wait()
		a.slogger.Log(context.TODO(), slog.LevelDebug,
			"command exited",
			"pid", cmd.Process.Pid,
			"err", err,
		)
	}()
}

// Wait blocks until every started command has exited or ctx is done.
func (a *Action) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.children.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for commands: %w", ctx.Err())
	}
}
