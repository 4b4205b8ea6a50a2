package middleware

import (
	"net/http"

	"github.com/gravepaint/gravepaint"
)

// InjectIdentity lifts the logged-in user's ID out of the session
// and into the request context,
// where backend clients built with identity.FromContext pick it up.
//
// Requests without a session or without a logged-in user pass through untouched.
// InjectIdentity must come after InjectSession.
func InjectIdentity() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SessionFromContext(r.Context())
			if !ok {
				h.ServeHTTP(w, r)
				return
			}

			id, err := s.UserID()
			if err != nil {
				h.ServeHTTP(w, r)
				return
			}

			h.ServeHTTP(w, r.Clone(gravepaint.NewIdentityContext(r.Context(), id)))
		})
	}
}
