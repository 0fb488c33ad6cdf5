// Package logger provides the leveled logging interface used across the service.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger defines the logging interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
}

// Level represents logging levels
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type logger struct {
	level   Level
	writers map[Level]*log.Logger
	mu      sync.RWMutex
}

// New creates a logger whose threshold is taken from the LOG_LEVEL
// environment variable (defaults to info).
func New() Logger {
	return NewWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// NewWithLevel creates a logger with an explicit threshold.
func NewWithLevel(level Level) Logger {
	return &logger{
		level: level,
		writers: map[Level]*log.Logger{
			LevelDebug: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags),
			LevelInfo:  log.New(os.Stdout, "[INFO] ", log.LstdFlags),
			LevelWarn:  log.New(os.Stdout, "[WARN] ", log.LstdFlags),
			LevelError: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		},
	}
}

// ParseLevel converts a string log level to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *logger) enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *logger) write(level Level, v ...interface{}) {
	if !l.enabled(level) {
		return
	}
	l.writers[level].Output(3, fmt.Sprint(v...))
}

func (l *logger) writef(level Level, format string, v ...interface{}) {
	if !l.enabled(level) {
		return
	}
	l.writers[level].Output(3, fmt.Sprintf(format, v...))
}

func (l *logger) Debug(v ...interface{})                 { l.write(LevelDebug, v...) }
func (l *logger) Debugf(format string, v ...interface{}) { l.writef(LevelDebug, format, v...) }
func (l *logger) Info(v ...interface{})                  { l.write(LevelInfo, v...) }
func (l *logger) Infof(format string, v ...interface{})  { l.writef(LevelInfo, format, v...) }
func (l *logger) Warn(v ...interface{})                  { l.write(LevelWarn, v...) }
func (l *logger) Warnf(format string, v ...interface{})  { l.writef(LevelWarn, format, v...) }
func (l *logger) Error(v ...interface{})                 { l.write(LevelError, v...) }
func (l *logger) Errorf(format string, v ...interface{}) { l.writef(LevelError, format, v...) }

func (l *logger) Fatal(v ...interface{}) {
	l.write(LevelError, v...)
	os.Exit(1)
}

func (l *logger) Fatalf(format string, v ...interface{}) {
	l.writef(LevelError, format, v...)
	os.Exit(1)
}
