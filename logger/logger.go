package logger

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

const knownFrames = 3

// The Logger interface defines the levels a logging can occur at.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)

	// Slog exposes the underlying [*log/slog.Logger]
	// for packages that log with it directly.
	Slog() *slog.Logger
}

// AppLogger implements Logger using log/slog.
type AppLogger struct {
	l    *slog.Logger
	skip int
}

// New constructs an AppLogger writing through l.
// A nil l uses [log/slog.Default].
func New(l *slog.Logger) *AppLogger {
	if l == nil {
		l = slog.Default()
	}

	return &AppLogger{l: l}
}

// AddSkip returns a copy of the AppLogger scrolling back i more frames
// when reporting the call site of a log.
func (l *AppLogger) AddSkip(i int) *AppLogger {
	newl := *l
	newl.skip += i
	return &newl
}

// Debug writes a debug log.
func (l *AppLogger) Debug(msg string, ctx *LogContext) { l.log(slog.LevelDebug, msg, ctx) }

// Error writes an error log.
func (l *AppLogger) Error(msg string, ctx *LogContext) { l.log(slog.LevelError, msg, ctx) }

// Info writes an info log.
func (l *AppLogger) Info(msg string, ctx *LogContext) { l.log(slog.LevelInfo, msg, ctx) }

// Warn writes a warning log.
func (l *AppLogger) Warn(msg string, ctx *LogContext) { l.log(slog.LevelWarn, msg, ctx) }

// Slog returns the wrapped [*log/slog.Logger].
func (l *AppLogger) Slog() *slog.Logger { return l.l }

func (l *AppLogger) log(level slog.Level, msg string, ctx *LogContext) {
	bg := context.Background()
	if !l.l.Enabled(bg, level) {
		return
	}

	// NOTE: skip runtime.Callers, log and the exported method
	var pcs [1]uintptr
	runtime.Callers(knownFrames+l.skip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if ctx != nil {
		r.AddAttrs(slog.Any(LogContextKey, ctx))
	}

	_ = l.l.Handler().Handle(bg, r)
}
