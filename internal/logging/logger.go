// Package logging appends timestamped lines to <root>/logs/modkit.log so mod
// authors can inspect partial-load failures after the host exits. Mod-scoped
// child loggers carry name and author attribution on every line.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level tags a log line.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger writes one timestamped, level-tagged line per call. The zero value
// and a nil receiver are both safe no-ops.
type Logger struct {
	out     io.Writer
	file    *os.File
	session string
	scope   string
}

// New creates (or reuses) the log file under rootDir and stamps a fresh
// session id so interleaved host runs can be told apart.
func New(rootDir string) (*Logger, error) {
	logDir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "modkit.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l := &Logger{out: f, file: f, session: uuid.NewString()}
	l.Infof("session %s started", l.session)
	return l, nil
}

// NewWithWriter directs log lines at an arbitrary sink. Tests and the
// headless host path use this with a buffer or stderr.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{out: w, session: uuid.NewString()}
}

// Session returns the id stamped on this logger's lines.
func (l *Logger) Session() string {
	if l == nil {
		return ""
	}
	return l.session
}

// ForMod returns a child logger whose lines are attributed to one mod.
// The author shows up in warnings so players know whom to report bugs to.
func (l *Logger) ForMod(name, author string) *Logger {
	if l == nil {
		return nil
	}
	scope := name
	if author != "" {
		scope = fmt.Sprintf("%s by %s", name, author)
	}
	return &Logger{out: l.out, session: l.session, scope: scope}
}

// Close releases the file handle, if this logger owns one.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Infof writes an informational line.
func (l *Logger) Infof(format string, args ...any) { l.write(LevelInfo, format, args...) }

// Warnf writes a warning line.
func (l *Logger) Warnf(format string, args ...any) { l.write(LevelWarn, format, args...) }

// Errorf writes an error line.
func (l *Logger) Errorf(format string, args ...any) { l.write(LevelError, format, args...) }

func (l *Logger) write(level Level, format string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	timestamp := time.Now().Format(time.RFC3339)
	if l.scope != "" {
		fmt.Fprintf(l.out, "[%s] %s [%s] %s\n", timestamp, level, l.scope, line)
		return
	}
	fmt.Fprintf(l.out, "[%s] %s %s\n", timestamp, level, line)
}
