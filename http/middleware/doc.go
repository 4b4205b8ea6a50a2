/*
The middleware package defines what a middleware is in gravepaint and a set of basic middlewares.

The available middlewares are:
  - CORS
  - ForceHTTPS
  - InjectIdentity
  - InjectIPAddress
  - InjectSession
  - LogRequest
  - RateLimit
  - ReportPanic
  - RequestID

The default chain, as assembled by package app, is:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(httpLogger),
		middleware.RateLimit(vs),
		middleware.ForceHTTPS(env),
		middleware.CORS(origin),
		middleware.InjectSession(sessionStore),
		middleware.InjectIdentity(),
	}
*/
package middleware
