package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level gates which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Unknown values default to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// Logger provides leveled logging throughout the application.
type Logger struct {
	level Level
	color bool
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	flags := 0
	return &Logger{
		level: LevelInfo,
		color: true,
		info:  log.New(os.Stdout, "", flags),
		warn:  log.New(os.Stdout, "", flags),
		err:   log.New(os.Stderr, "", flags),
		debug: log.New(os.Stdout, "", flags),
	}
}

// NewWriterLogger sends every level to w without colour codes.
func NewWriterLogger(w io.Writer, level Level) *Logger {
	l := log.New(w, "", 0)
	return &Logger{level: level, info: l, warn: l, err: l, debug: l}
}

// NewFileLogger appends to path, creating parent directories. Used while the
// terminal UI owns the screen.
func NewFileLogger(path string, level Level) (*Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open %q: %w", path, err)
	}
	return NewWriterLogger(f, level), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWriterLogger(io.Discard, LevelError+1)
}

// SetLevel changes the minimum level emitted.
func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) tag(code, name string) string {
	if !l.color {
		return fmt.Sprintf("%-5s", name)
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", code, name) + strings.Repeat(" ", 5-len(name))
}

func (l *Logger) Info(format string, args ...any) {
	if l.level > LevelInfo {
		return
	}
	l.info.Printf(fmt.Sprintf("[%s] %s %s\n", l.timestamp(), l.tag("32", "INFO"), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	if l.level > LevelWarn {
		return
	}
	l.warn.Printf(fmt.Sprintf("[%s] %s %s\n", l.timestamp(), l.tag("33", "WARN"), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	if l.level > LevelError {
		return
	}
	l.err.Printf(fmt.Sprintf("[%s] %s %s\n", l.timestamp(), l.tag("31", "ERROR"), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if l.level > LevelDebug {
		return
	}
	l.debug.Printf(fmt.Sprintf("[%s] %s %s\n", l.timestamp(), l.tag("36", "DEBUG"), format), args...)
}
