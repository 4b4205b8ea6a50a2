package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/identity"
)

// IdentityHeader is the header carrying the logged-in user's ID.
// It is sent exactly as written, not in canonical form.
const IdentityHeader = "userId"

// An Interceptor wraps the http.RoundTripper dispatching a request,
// acting on the request before handing it on.
type Interceptor func(http.RoundTripper) http.RoundTripper

// A RoundTripFunc is an ordinary function used as an http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls fn.
func (fn RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return fn(req) }

// Chain glues the interceptors to rt.
// A request passes through the interceptors in the order given.
func Chain(rt http.RoundTripper, is ...Interceptor) http.RoundTripper {
	// NOTE: loop in reverse to preserve interceptor order
	for i := len(is) - 1; i >= 0; i-- {
		if is[i] == nil {
			continue
		}

		rt = is[i](rt)
	}

	return rt
}

// InjectIdentity sets IdentityHeader to the user ID src yields.
// When src yields nothing, the request is sent without the header.
//
// A nil src yields nothing.
func InjectIdentity(src identity.Source) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		if src == nil {
			return next
		}

		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			id, ok := src.UserID(req.Context())
			if !ok || id == "" {
				return next.RoundTrip(req)
			}

			// NOTE: a RoundTripper must not modify the request it was given
			req = req.Clone(req.Context())
			req.Header[IdentityHeader] = []string{id}

			return next.RoundTrip(req)
		})
	}
}

// LogRoundTrip logs each request and its outcome to l,
// masking the value of IdentityHeader.
//
// A nil l logs nothing.
func LogRoundTrip(l *slog.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		if l == nil {
			return next
		}

		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			res, err := next.RoundTrip(req)

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Any("header", gravepaint.MaskHeader(req.Header, IdentityHeader)),
				slog.Duration("duration", time.Since(start)),
			}

			level := slog.LevelInfo
			if err != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("error", err.Error()))
			} else {
				attrs = append(attrs, slog.Int("status", res.StatusCode))
			}

			l.LogAttrs(req.Context(), level, "round trip", attrs...)

			return res, err
		})
	}
}
