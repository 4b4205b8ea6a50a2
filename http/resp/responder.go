package resp

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/http/middleware"
	"github.com/gravepaint/gravepaint/http/session"
	"github.com/gravepaint/gravepaint/logger"
)

const (
	defaultTitle  = "gravepaint"
	jsonMediaType = "application/json"
	vueTmplName   = "vue.html.tmpl"

	responderFrames = 1
)

//go:embed tmpl/*.tmpl
var tmpls embed.FS

var defaultVue = template.Must(template.ParseFS(tmpls, "tmpl/"+vueTmplName))

// Responder maintains reusable pieces for responding to HTTP requests.
// It exposes many common methods for writing structured data as an HTTP response.
// These are the forms of response Responder can execute:
//
//	Err
//	Json
//	Page
//	Redirect
//
// Most oftentimes, setting up a single instance of a Responder suffices for an application.
//
// When handling a specific HTTP request, calling code supplies additional data, structure,
// and so forth through Fn functions.
type Responder struct {
	logger logger.Logger

	// Pool of *bytes.Buffer to prerender responses into
	pool *sync.Pool

	// Error message to use for "contact us" style client-side error messages,
	// i.e., those set in a session.Flash
	contactErrMsg string

	// Root URL the responder is listening on, also used when in an error state
	rootUrl *url.URL

	shell struct {
		scripts []string
		styles  []string
		title   string
		tmpl    *template.Template
	}
}

// NewResponder constructs a *Responder using the ResponderOptFns passed in.
func NewResponder(opts ...ResponderOptFn) *Responder {
	d := &Responder{
		pool:    &sync.Pool{New: func() any { return new(bytes.Buffer) }},
		rootUrl: &url.URL{Path: "/"},
	}
	d.shell.title = defaultTitle
	d.shell.tmpl = defaultVue

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.New(nil)
	}

	if l, ok := d.logger.(*logger.AppLogger); ok {
		d.logger = l.AddSkip(responderFrames)
	}

	return d
}

// Err wraps http.Error(), logging the error causing the failure state.
//
// Use in exceptional circumstances when no Redirect or Page can occur.
func (doer *Responder) Err(w http.ResponseWriter, r *http.Request, err error, opts ...Fn) {
	rr, nested := doer.do(w, r, append(opts, Err(err))...)
	if nested != nil {
		err = fmt.Errorf("%w: %s", err, nested)
	}

	var msg string
	if err != nil {
		msg = err.Error()
	}

	if rr == nil || rr.code == 0 {
		rr = &Response{code: http.StatusInternalServerError}
	}

	http.Error(w, msg, rr.code)
}

type jsonSchema struct {
	D any `json:"data,omitempty"`
	U any `json:"currentUser,omitempty"`
}

// Json responds with data in JSON format, collating it from User(), Data() and setting appropriate headers.
//
// When standard 2xx codes are supplied, the JSON schema will look like this:
//
//	{
//		"currentUser": {},
//		"data": {}
//	}
//
// Otherwise, "currentUser" is elided.
func (doer *Responder) Json(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return err
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	payload := jsonSchema{D: rr.data}
	if rr.code >= http.StatusOK && rr.code <= http.StatusNoContent {
		payload.U = rr.user
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if err := json.NewEncoder(b).Encode(payload); err != nil {
		doer.Err(w, r, err)
		return err
	}

	w.Header().Set("Content-Type", jsonMediaType+"; charset=UTF-8")
	w.WriteHeader(rr.code)
	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

// shellData is what the Vue shell template renders.
type shellData struct {
	Component string
	Props     map[string]any
	Scripts   []string
	Styles    []string
	Title     string
}

// Page renders the Vue client mounting component with the props built by the options.
// When the request accepts JSON and not HTML, Page responds with the props
// as the "data" of [Responder.Json] instead.
//
// The props always carry "initialProps" holding "baseURL", "currentUser" and "flashes".
// Data() given a map[string]any merges the map into the props;
// any other value is placed under a "props" key.
func (doer *Responder) Page(w http.ResponseWriter, r *http.Request, component string, opts ...Fn) error {
	if component == "" {
		return fmt.Errorf("%w: no component to render", gravepaint.ErrMissingData)
	}

	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return err
	}

	props := doer.props(w, r, rr)
	if WantsJSON(r) {
		return doer.Json(w, r, Code(rr.code), User(rr.user), Data(props))
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	data := shellData{
		Component: component,
		Props:     props,
		Scripts:   doer.shell.scripts,
		Styles:    doer.shell.styles,
		Title:     doer.shell.title,
	}

	if err := doer.shell.tmpl.Execute(b, data); err != nil {
		doer.Err(w, r, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.WriteHeader(rr.code)
	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

// Redirect calls http.Redirect, given Url() set the redirect destination.
// If Url() is not passed in opts, then ToRoot() sets the redirect destination.
//
// The default response status code is 302.
//
// If Code() set the status code to something other than standard redirect 3xx statuses,
// Redirect overwrites the status code with an appropriate 3xx status code.
func (doer *Responder) Redirect(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, append([]Fn{ToRoot()}, opts...)...)
	if err != nil {
		return err
	}

	if rr.url == nil {
		return fmt.Errorf("%w: cannot redirect, no resp.url", gravepaint.ErrMissingData)
	}

	switch {
	case rr.code >= http.StatusMultipleChoices && rr.code <= http.StatusPermanentRedirect:
		// NOTE: code is already a 3xx, so do nothing
	case rr.code >= http.StatusBadRequest && rr.code < http.StatusInternalServerError:
		rr.code = http.StatusSeeOther
	case rr.code >= http.StatusInternalServerError:
		rr.code = http.StatusTemporaryRedirect
	default:
		rr.code = http.StatusFound
	}

	http.Redirect(w, r, rr.url.String(), rr.code)
	return nil
}

// Session retrieves the session middleware.InjectSession set in the context.
//
// If there is none, ErrNoSession returns.
func (doer Responder) Session(ctx context.Context) (session.AppSessionable, error) {
	s, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: nothing set at %q", ErrNoSession, gravepaint.SessionKey)
	}

	return s, nil
}

// WantsJSON reports whether r prefers a JSON response over HTML.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, jsonMediaType) && !strings.Contains(accept, "text/html")
}

// do applies all options to the passed in http.ResponseWriter and *http.Request.
//
// Calling code ought to pass Options in the correct order.
// An option requiring something set by another one should come after.
func (doer *Responder) do(w http.ResponseWriter, r *http.Request, opts ...Fn) (*Response, error) {
	resp := &Response{w: w, r: r}

	for _, opt := range opts {
		select {
		case <-r.Context().Done():
			return nil, fmt.Errorf("%w", ErrDone)
		default:
			if err := opt(*doer, resp); err != nil {
				return resp, err
			}
		}
	}

	return resp, nil
}

// props structures the data of rr according to the schema documented on Page.
func (doer *Responder) props(w http.ResponseWriter, r *http.Request, rr *Response) map[string]any {
	init := map[string]any{"currentUser": rr.user}
	if doer.rootUrl != nil {
		init["baseURL"] = doer.rootUrl.String()
	}

	if s, err := doer.Session(r.Context()); err == nil {
		if flashes := s.Flashes(w, r); len(flashes) > 0 {
			init["flashes"] = flashes
		}
	}

	props := map[string]any{"initialProps": init}
	switch t := rr.data.(type) {
	case nil:
	case map[string]any:
		for k, v := range t {
			if k == "initialProps" {
				continue
			}
			props[k] = v
		}
	default:
		props["props"] = rr.data
	}

	return props
}
