// Package logger holds the process-wide structured logger. Output goes
// to a dated JSON log file so the TUI never writes to the terminal it is
// drawing on; until Init is called everything is discarded.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	filePrefix = "treekit-"
	fileSuffix = ".log"

	// Files older than this are swept on Init.
	retention = 30 * 24 * time.Hour
)

// Options configures Init.
type Options struct {
	// Enabled turns file logging on. When false all output is discarded.
	Enabled bool
	// LogDir overrides the log directory, default ~/.treekit/logs.
	LogDir string
	// Level is the minimum level, default Info.
	Level slog.Level
}

var (
	root    = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile *os.File
)

// Init opens today's log file and installs the JSON logger. Call once
// from main before any logging; safe to skip entirely for tools that
// never log.
func Init(opts Options) error {
	if !opts.Enabled {
		root = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	dir := opts.LogDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".treekit", "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	sweep(dir)

	name := filePrefix + time.Now().Format("2006-01-02") + fileSuffix
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	root = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// Close flushes and closes the log file. Logging after Close is lost.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	root = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// With returns a logger scoped to one component.
func With(component string) *slog.Logger {
	return root.With("component", component)
}

// sweep removes expired log files. Best effort.
func sweep(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-retention)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		os.Remove(filepath.Join(dir, name))
	}
}

func Debug(msg string, args ...any) { root.Debug(msg, args...) }
func Info(msg string, args ...any)  { root.Info(msg, args...) }
func Warn(msg string, args ...any)  { root.Warn(msg, args...) }
func Error(msg string, args ...any) { root.Error(msg, args...) }
