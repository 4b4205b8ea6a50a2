package logger

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
)

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgWhite),
	slog.LevelInfo:  color.New(color.FgBlue),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

// ColorizeLevel colors the level of a record for terminal output.
//
// ColorizeLevel is meant for use as, or in, [log/slog.HandlerOptions.ReplaceAttr].
func ColorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	c, ok := levelColors[lvl]
	if !ok {
		c = color.New(color.FgMagenta)
	}

	return slog.String(slog.LevelKey, c.Sprint(lvl.String()))
}

// TruncSourceAttr shortens the source of a record to its parent directory, file and line.
//
// TruncSourceAttr is meant for use as, or in, [log/slog.HandlerOptions.ReplaceAttr].
func TruncSourceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.SourceKey {
		return a
	}

	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}

	return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", immediateFilepath(src.File), src.Line))
}

// DeleteLevelAttr drops the level of a record.
func DeleteLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		return slog.Attr{}
	}

	return a
}

// DeleteMessageAttr drops the message of a record.
func DeleteMessageAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.MessageKey {
		return slog.Attr{}
	}

	return a
}
