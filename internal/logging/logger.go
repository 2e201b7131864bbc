// Package logging provides persistent file logging for diagnosing issues
// when the watcher is launched by launchd without console access.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// FileName is the name of the log file inside Options.Dir.
	FileName = "dark-mode-notify.log"

	maxLogFileSize = 10 // megabytes
	maxLogFiles    = 5
	maxLogAge      = 28 // days
)

// Options configures New.
type Options struct {
	Dir    string // "" disables the file log
	Debug  bool   // stderr shows debug records instead of warnings only
	Stderr io.Writer
}

// New builds a logger that writes JSON records at debug level to a rotating
// file in opts.Dir and text records to opts.Stderr. If the directory can't be
// created the logger keeps working on stderr alone.
//
// The returned closer flushes and closes the log file.
func New(opts Options) (*slog.Logger, io.Closer) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	console := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})

	if opts.Dir == "" {
		return slog.New(console), nopCloser{}
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		// Continue anyway, stderr is enough to run.
		logger := slog.New(console)
		logger.Log(context.TODO(), slog.LevelWarn,
			"file logging disabled",
			"component", "logging",
			"dir", opts.Dir,
			"err", err,
		)
		return logger, nopCloser{}
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, FileName),
		MaxSize:    maxLogFileSize,
		MaxBackups: maxLogFiles,
		MaxAge:     maxLogAge,
		Compress:   true,
	}
	file := slog.NewJSONHandler(lj, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})

	logger := slog.New(slogmulti.Fanout(file, console))
	logger.Log(context.TODO(), slog.LevelDebug,
		"file logging initialized",
		"component", "logging",
		"path", lj.Filename,
	)
	return logger, lj
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
