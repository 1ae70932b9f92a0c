// Package silog provides the leveled logger used throughout bbs.
// Output is rendered by go.abhg.dev/log/silog.
package silog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"go.abhg.dev/log/silog"
)

// Options configures a Logger.
type Options struct {
	// Level is the minimum level to log.
	// Defaults to slog.LevelInfo.
	Level slog.Leveler

	// Style overrides the rendering style.
	// Defaults to silog's default style,
	// with colors only if the writer is a terminal.
	Style *silog.Style
}

// Logger is a leveled logger with printf-style variants.
// The zero value is not usable; use New or Nop.
type Logger struct {
	sl *slog.Logger
}

// New builds a logger writing to w.
func New(w io.Writer, opts *Options) *Logger {
	if opts == nil {
		opts = &Options{}
	}
	style := opts.Style
	if style == nil {
		style = silog.DefaultStyle(lipgloss.NewRenderer(w))
	}

	h := silog.NewHandler(w, &silog.HandlerOptions{
		Level:       opts.Level,
		Style:       style,
		ReplaceAttr: dropTime,
	})
	return &Logger{sl: slog.New(h)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(io.Discard, nil)
}

// CLI output carries no timestamps.
func dropTime(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && attr.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return attr
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger { return l.sl }

// With returns a logger that adds the given key-value pairs
// to every message.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{sl: l.sl.With(args...)}
}

// Enabled reports whether messages at lvl are logged.
func (l *Logger) Enabled(lvl slog.Level) bool {
	return l.sl.Enabled(context.Background(), lvl)
}

func (l *Logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

func (l *Logger) Debugf(format string, args ...any) { l.logf(slog.LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(slog.LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(slog.LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(slog.LevelError, format, args...) }

// logf skips formatting when the level is disabled.
func (l *Logger) logf(lvl slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.sl.Enabled(ctx, lvl) {
		return
	}
	l.sl.Log(ctx, lvl, fmt.Sprintf(format, args...))
}
