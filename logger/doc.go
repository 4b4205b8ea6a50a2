/*
Package logger provides logging functionality to a gravepaint app by defining the required behavior in [Logger]
and providing an implementation of it with [AppLogger].

# Overview

[AppLogger] wraps a [*log/slog.Logger].
Each method accepts a message and an optional [*LogContext].
The [*LogContext] carries data inessential to the message proper,
such as the error that triggered logging or the request being handled,
and is emitted as a "log_context" group.

Here's an example, using the text handler built by [ColorizeLevel] and [TruncSourceAttr]:

	time=2024-04-28T15:55:21.000Z level=ERROR source=views/canvas.go:43 msg="failed loading canvas" kind=app log_context.error="unexpected EOF"

# SentryLogger

[SentryLogger] decorates a [Logger], shipping any [LogContext.Error]
logged at WARN or above to Sentry.
*/
package logger
