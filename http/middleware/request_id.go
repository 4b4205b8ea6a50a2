package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gravepaint/gravepaint"
)

// RequestID adds a uuid to the request context under gravepaint.RequestIDKey.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), gravepaint.RequestIDKey, uuid.NewString())
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
