package logger

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"runtime"

	"github.com/gravepaint/gravepaint"
)

// LogContextKey is the group a [LogContext] is logged under.
const LogContextKey = "log_context"

const identityHeader = "userId"

var _ slog.LogValuer = LogContext{}

// LogUser is the interface exposing attributes of a user to a LogContext.
type LogUser interface {
	// Identity is the value sent in the userId header for the user.
	Identity() string
}

// A LogContext provides additional information
// for a [Logger] method that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller overrides the caller file and line number with the provided value.
	//
	// Caller helps goroutines identify the callers of the process that spawned it.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	Request *http.Request

	// User is the user whose session was active during the logging event.
	User LogUser
}

// LogValue renders the set fields of the LogContext as a group.
// The userId header of Request is masked.
//
// LogValue implements [log/slog.LogValuer].
func (lc LogContext) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 5)
	if lc.Caller != "" {
		attrs = append(attrs, slog.String("caller", lc.Caller))
	}

	if lc.Data != nil {
		attrs = append(attrs, slog.Any("data", lc.Data))
	}

	if lc.Error != nil {
		attrs = append(attrs, slog.String("error", lc.Error.Error()))
	}

	if lc.Request != nil {
		attrs = append(attrs, slog.Group(
			"request",
			slog.String("method", lc.Request.Method),
			slog.String("url", lc.Request.URL.String()),
			slog.Any("header", gravepaint.MaskHeader(lc.Request.Header, identityHeader)),
		))
	}

	if lc.User != nil {
		if id := lc.User.Identity(); id != "" {
			attrs = append(attrs, slog.Group("user", slog.String("id", id)))
		}
	}

	return slog.GroupValue(attrs...)
}

// CurrentCaller retrieves the caller for the caller of CurrentCaller,
// formatted for using as a value in LogContext.Caller.
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s:%d", immediateFilepath(file), line)
}

// immediateFilepath trims file down to its parent directory and name.
//
// e.g.,:
// /home/gp/gravepaint/main.go => gravepaint/main.go
// /home/gp/gravepaint/views/canvas.go => views/canvas.go
func immediateFilepath(file string) string {
	dir, name := path.Split(file)
	return path.Join(path.Base(dir), name)
}
