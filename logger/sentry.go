package logger

import (
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/gravepaint/gravepaint"
)

// A SentryLogger sends errors logged at WARN and above to Sentry.
type SentryLogger struct {
	l Logger
}

// NewSentryLogger initializes Sentry with dsn and wraps l.
// If Sentry cannot be initialized, the error is logged and l returns.
func NewSentryLogger(env gravepaint.Environment, l *AppLogger, dsn string) Logger {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:          dsn,
		Environment:  env.String(),
		IgnoreErrors: []string{"write: broken pipe"},
	})
	if err != nil {
		l.Error("unable to init Sentry", &LogContext{Error: err})
		return l
	}

	return &SentryLogger{l: l.AddSkip(1)}
}

// Debug writes a debug log.
func (sl *SentryLogger) Debug(msg string, ctx *LogContext) { sl.l.Debug(msg, ctx) }

// Info writes an info log.
func (sl *SentryLogger) Info(msg string, ctx *LogContext) { sl.l.Info(msg, ctx) }

// Error writes an error log and sends it to Sentry.
func (sl *SentryLogger) Error(msg string, ctx *LogContext) {
	sl.l.Error(msg, ctx)
	sl.send(sentry.LevelError, ctx)
}

// Warn writes a warning log and sends it to Sentry.
func (sl *SentryLogger) Warn(msg string, ctx *LogContext) {
	sl.l.Warn(msg, ctx)
	sl.send(sentry.LevelWarning, ctx)
}

// Slog returns the wrapped [*log/slog.Logger].
func (sl *SentryLogger) Slog() *slog.Logger { return sl.l.Slog() }

// send ships the LogContext.Error to Sentry,
// including any additional data from LogContext.
func (sl *SentryLogger) send(level sentry.Level, ctx *LogContext) {
	if ctx == nil || ctx.Error == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if ctx.User != nil {
			scope.SetUser(sentry.User{ID: ctx.User.Identity()})
		}

		if ctx.Request != nil {
			scope.SetRequest(ctx.Request)
		}

		if ctx.Data != nil {
			scope.SetExtra("data", ctx.Data)
		}

		if ctx.Caller != "" {
			scope.SetTag("caller", ctx.Caller)
		}

		scope.SetLevel(level)
		sentry.CaptureException(ctx.Error)
	})
}
