// Package logging provides the process-wide structured logger for rowdb.
//
// The package wraps log/slog behind a single global logger. Call Init once at
// startup; every other package retrieves loggers through GetLogger or one of
// the With helpers so level and destination are controlled in one place.
// Until Init runs, a WARN-level text logger on stderr is used so the REPL
// output stays clean.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level names accepted by Init and the config file.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var (
	logger   *slog.Logger
	loggerMu sync.RWMutex
	logFile  *os.File
)

// Config holds logger configuration.
type Config struct {
	Level      string
	OutputPath string // empty for stderr
	Format     string // "json" or "text"
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn, "":
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// Init installs the global logger. Calling it again replaces the previous
// logger and closes its log file.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	var file *os.File
	if cfg.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o750); err != nil {
			return err
		}
		file, err = os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		w = file
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	logger = newLogger(w, level, cfg.Format)
	return nil
}

// Close releases the log file, if any, and falls back to the default logger.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	var err error
	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}
	logger = nil
	return err
}

// GetLogger returns the current logger.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = newLogger(os.Stderr, slog.LevelWarn, "text")
	}
	return logger
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithComponent creates a logger tagged with a subsystem name.
//
//	log := logging.WithComponent("table")
//	log.Info("table opened", "rows", 12)
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithPage creates a logger tagged with a page number. Pages are owned by
// the pager, so the logger also carries that component.
//
//	log := logging.WithPage(pageID)
//	log.Debug("page flushed", "bytes", n)
func WithPage(pageID uint32) *slog.Logger {
	return WithComponent("pager").With("page_id", pageID)
}
