// Package logger installs the process-wide slog default. Interpreter
// packages log through slog directly; this is the one place that
// decides where those records go.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
)

// LevelTrace sits below slog's debug so chatty interpreter internals
// can be switched on separately. LevelNone sits above error and
// silences everything.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelNone  = slog.LevelError + 4
)

type sink struct {
	mu   sync.Mutex
	file *os.File
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return len(p), nil
	}
	return s.file.Write(p)
}

func (s *sink) reopen(path string) error {
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	s.mu.Lock()
	old := s.file
	s.file = fh
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

var active *sink

// Setup configures the default logger. Records go to stderr as text,
// or to path as JSON when one is given. A file that cannot be opened
// falls back to stderr rather than killing the run.
func Setup(level, path string) {
	lvl := ParseLevel(level)

	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
		return
	}

	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
		return
	}

	active = &sink{file: fh}
	slog.SetDefault(slog.New(slog.NewJSONHandler(active, &slog.HandlerOptions{Level: lvl})))
	watchRotation(active, path)
}

// ParseLevel maps the CLI spelling to a slog level. Unknown spellings
// log nothing, same as asking for none.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// watchRotation reopens the log file on SIGHUP so an external rotation
// can move the old one aside:
//
//	mv chalk.log chalk.log.1 && kill -HUP <pid>
func watchRotation(s *sink, path string) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		for range sigs {
			if err := s.reopen(path); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		}
	}()
}

// Close releases the log file, if any. Safe to call when logging went
// to stderr.
func Close() {
	if active == nil {
		return
	}
	active.mu.Lock()
	defer active.mu.Unlock()
	if active.file != nil {
		_ = active.file.Close()
		active.file = nil
	}
}
