// Package logger provides leveled console logging for saltview.
//
// The rendering engine itself is pure and does not log; the logger is
// used by the CLI and the Salt API client. Output is prefixed with
// [HH:MM:SS] timestamps, filtered by level, and colorized only when the
// writer is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger writes timestamped, level-filtered messages to a writer.
// Safe for concurrent use.
type ConsoleLogger struct {
	writer   io.Writer
	level    int
	mu       sync.Mutex
	colorize bool

	debugTag *color.Color
	warnTag  *color.Color
	errorTag *color.Color
}

// New creates a ConsoleLogger for the given writer and minimum level
// (debug, info, warn, error; case-insensitive). Empty or unknown levels
// default to info. A nil writer discards all output. Level tags are
// colorized when the writer is os.Stdout or os.Stderr on a terminal.
func New(writer io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:   writer,
		level:    parseLevel(level),
		colorize: isTerminal(writer),
		debugTag: color.New(color.FgCyan),
		warnTag:  color.New(color.FgYellow),
		errorTag: color.New(color.FgRed),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// isTerminal reports whether the writer is a standard stream with color
// support. fatih/color's NoColor already folds in NO_COLOR and TTY
// detection for the standard streams.
func isTerminal(w io.Writer) bool {
	if w != os.Stdout && w != os.Stderr {
		return false
	}
	return !color.NoColor
}

// Debugf logs at debug level.
func (l *ConsoleLogger) Debugf(format string, args ...any) {
	l.logf(levelDebug, l.debugTag, "DEBUG", format, args...)
}

// Infof logs at info level.
func (l *ConsoleLogger) Infof(format string, args ...any) {
	l.logf(levelInfo, nil, "INFO", format, args...)
}

// Warnf logs at warn level.
func (l *ConsoleLogger) Warnf(format string, args ...any) {
	l.logf(levelWarn, l.warnTag, "WARN", format, args...)
}

// Errorf logs at error level.
func (l *ConsoleLogger) Errorf(format string, args ...any) {
	l.logf(levelError, l.errorTag, "ERROR", format, args...)
}

func (l *ConsoleLogger) logf(level int, tag *color.Color, name, format string, args ...any) {
	if l.writer == nil || level < l.level {
		return
	}

	label := name
	if l.colorize && tag != nil {
		label = tag.Sprint(name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.writer, "[%s] [%s] %s\n", time.Now().Format("15:04:05"), label, fmt.Sprintf(format, args...))
}
