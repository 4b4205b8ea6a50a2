package resp

import (
	"html/template"
	"net/url"

	"github.com/gravepaint/gravepaint/logger"
)

// A ResponderOptFn mutates the provided *Responder in some way.
// A ResponderOptFn is used when constructing a new Responder.
type ResponderOptFn func(*Responder)

// WithContactErrMsg sets the error message to use for error Flashes.
//
// We recommend using session.DefaultErrMsg as a template.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) {
		d.contactErrMsg = msg
	}
}

// WithLogger sets the provided implementation of Logger in order to log all statements through it.
//
// If no Logger is provided through this option, one wrapping log/slog's default is configured.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

// WithRootUrl sets the provided URL after parsing it into a *url.URL to use for rendering and redirecting
//
// NOTE: If u fails parsing by url.ParseRequestURI, the root URL becomes /
func WithRootUrl(u string) ResponderOptFn {
	good, err := url.ParseRequestURI(u)
	if err != nil {
		good = &url.URL{Path: "/"}
	}

	return func(d *Responder) {
		d.rootUrl = good
	}
}

// WithScripts sets the JavaScript modules the Vue shell loads, e.g. the built client entrypoint.
func WithScripts(srcs ...string) ResponderOptFn {
	return func(d *Responder) {
		d.shell.scripts = append(d.shell.scripts, srcs...)
	}
}

// WithStyles sets the stylesheets the Vue shell links.
func WithStyles(hrefs ...string) ResponderOptFn {
	return func(d *Responder) {
		d.shell.styles = append(d.shell.styles, hrefs...)
	}
}

// WithTitle sets the document title of the Vue shell.
func WithTitle(title string) ResponderOptFn {
	return func(d *Responder) {
		d.shell.title = title
	}
}

// WithVueTemplate replaces the embedded Vue shell.
//
// The template is executed with a value holding
// Title, Component, Props, Scripts and Styles.
func WithVueTemplate(tmpl *template.Template) ResponderOptFn {
	return func(d *Responder) {
		if tmpl != nil {
			d.shell.tmpl = tmpl
		}
	}
}
