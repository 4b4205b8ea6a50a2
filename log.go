package gravepaint

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	LogKindKey = "kind"
	LogMaskVal = "xxxxxx"
)

var (
	AppLogKind    = slog.StringValue("app")
	HTTPLogKind   = slog.StringValue("http")
	ClientLogKind = slog.StringValue("client")

	// MaskedLogValue is a convenience [log/slog.Value]
	// to be used in implementations of [log/slog.LogValuer]
	// to hide sensitive data from log messages.
	MaskedLogValue = slog.StringValue(LogMaskVal)
)

// Mask replaces all values paired to key with a single LogMaskVal.
func Mask(vals url.Values, key string) {
	if _, ok := vals[key]; !ok {
		return
	}

	vals[key] = []string{LogMaskVal}
}

// MaskHeader is Mask for an [net/http.Header], matching key in any letter case.
// The header is cloned first so the request being logged is left alone.
func MaskHeader(h http.Header, key string) http.Header {
	h = h.Clone()
	for k := range h {
		if strings.EqualFold(k, key) {
			h[k] = []string{LogMaskVal}
		}
	}

	return h
}
