// Package views holds the page handlers of gravepaint.
//
// Each page renders the Vue client through [resp.Responder.Page],
// handing it the props gathered from the backends.
package views
