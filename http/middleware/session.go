package middleware

import (
	"context"
	"net/http"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/http/session"
)

// InjectSession stores the session associated with the *http.Request in *http.Request.Context
// under gravepaint.SessionKey.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// NOTE: a session that fails decoding is replaced by a fresh one
			s, _ := store.GetSession(r)
			if s == nil {
				h.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), gravepaint.SessionKey, s)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// SessionFromContext retrieves the session stored by InjectSession.
func SessionFromContext(ctx context.Context) (session.AppSessionable, bool) {
	s, ok := ctx.Value(gravepaint.SessionKey).(session.AppSessionable)
	return s, ok
}
