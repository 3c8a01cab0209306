// Package logging builds the diagnostics logger. The terminal belongs to the
// TUI, so entries go to a file under the XDG state directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// New returns a text logger writing to w at level.
func New(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return log, nil
}

// ParseLevel maps a level name to a logrus level, "off" disables logging.
func ParseLevel(level string) (logrus.Level, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	switch level {
	case "":
		return logrus.InfoLevel, nil
	case "off":
		return logrus.PanicLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return lvl, nil
}

// OpenFile opens (appending) the log file at path and returns a logger
// writing to it with a closer for the file.
func OpenFile(path, level string) (*logrus.Logger, io.Closer, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log, err := New(f, level)
	if err != nil {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close after a failed setup.
			_ = cerr
		}
		return nil, nil, err
	}
	return log, f, nil
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
