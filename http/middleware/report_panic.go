package middleware

import (
	"fmt"
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/logger"
)

// ReportPanic recovers from a panic in the handler,
// logs it and responds 500.
//
// Outside of development and testing the panic is also reported to Sentry.
func ReportPanic(env gravepaint.Environment, l logger.Logger) Adapter {
	return func(handler http.Handler) http.Handler {
		if !env.IsDevelopment() && !env.IsTesting() {
			handler = sentryhttp.New(sentryhttp.Options{
				Repanic:         true,
				WaitForDelivery: false,
			}).Handle(handler)
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				if l != nil {
					l.Error("recovered from panic", &logger.LogContext{
						Error:   fmt.Errorf("%v", rec),
						Request: r,
					})
				}

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			handler.ServeHTTP(w, r)
		})
	}
}
