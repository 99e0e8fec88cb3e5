// If you are AI: This file constructs the slog loggers used across animage.
// Level is held in a LevelVar so the debug setting can change it at runtime.

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// FieldComponent is the attribute key naming the emitting component.
const FieldComponent = "component"

// Options describes logger construction parameters.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	Writer io.Writer
	// Color forces ANSI level colours on or off. Nil detects a terminal writer.
	Color *bool
}

// Logger bundles a slog logger with the level it was built with.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	base  slog.Level
}

// New constructs a logger using the provided options.
func New(opts Options) (*Logger, error) {
	base := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(base)

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar})
	case "console", "":
		color := isTerminal(w)
		if opts.Color != nil {
			color = *opts.Color
		}
		handler = newConsoleHandler(w, levelVar, color)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	return &Logger{Logger: slog.New(handler), level: levelVar, base: base}, nil
}

// SetDebug lowers the level to debug, or restores the configured level.
func (l *Logger) SetDebug(on bool) {
	if on && l.base > slog.LevelDebug {
		l.level.Set(slog.LevelDebug)
		return
	}
	l.level.Set(l.base)
}

// Level reports the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// Error renders an error attribute, tolerating nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
