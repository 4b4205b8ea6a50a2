package router

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/http/middleware"
	"github.com/gravepaint/gravepaint/logger"
)

// A Route maps a path and its HTTP methods to the view rendering it.
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	// Path is the pattern matched against the request path, e.g. /gravepaint/{id}.
	Path string

	// Name identifies the Route when building URLs with [Router.URL].
	// It is optional.
	Name string

	// Methods the Route answers. When empty the Route answers GET.
	Methods []string

	View        http.Handler
	Middlewares []middleware.Adapter
}

// A Match is the outcome of resolving a path against the [Router].
type Match struct {
	Route  Route
	Params map[string]string
}

// Router routes requests for pages to their views.
type Router struct {
	Env           gravepaint.Environment
	everyReqStack []middleware.Adapter
	logger        logger.Logger
	logReq        middleware.Adapter
	r             *mux.Router
	routes        *registry
}

// registry remembers the Route each [*mux.Route] was registered for.
// It is shared by a Router and its subrouters.
type registry struct {
	mu  sync.RWMutex
	val map[*mux.Route]Route
}

func (reg *registry) add(mr *mux.Route, route Route) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.val[mr] = route
}

func (reg *registry) get(mr *mux.Route) (Route, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	route, ok := reg.val[mr]
	return route, ok
}

// An Option configures a [*Router].
type Option func(*Router)

// WithLogger sets the [logger.Logger] panics recovered in views are logged to.
func WithLogger(l logger.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithStatic serves the files under dir at prefix, e.g. the built Vue client.
// Responses are marked cacheable for 30 days.
func WithStatic(prefix, dir string) Option {
	return func(r *Router) {
		if prefix == "" || dir == "" {
			return
		}

		r.r.PathPrefix(prefix).Handler(middleware.Chain(
			http.StripPrefix(prefix, http.FileServer(http.Dir(dir))),
			cacheControlMiddleware(),
			r.logReq,
		))
	}
}

// New constructs a [*Router] for the given environment.
// logReq is applied to every request, including those to static files.
func New(env gravepaint.Environment, logReq middleware.Adapter, opts ...Option) *Router {
	if logReq == nil {
		logReq = middleware.NoopAdapter
	}

	r := &Router{
		Env:    env,
		logReq: logReq,
		r:      mux.NewRouter(),
		routes: &registry{val: make(map[*mux.Route]Route)},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.Handler] as the default
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.Handler) {
	r.r.NotFoundHandler = middleware.Chain(
		middleware.ReportPanic(r.Env, r.logger)(handler),
		r.logReq,
	)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := make([]middleware.Adapter, 0, 1+len(r.everyReqStack)+len(middlewares)+len(route.Middlewares))
		mws = append(mws, r.logReq)
		mws = append(mws, r.everyReqStack...)
		mws = append(mws, middlewares...)
		mws = append(mws, route.Middlewares...)

		methods := route.Methods
		if len(methods) == 0 {
			methods = []string{http.MethodGet}
		}

		handler := middleware.Chain(middleware.ReportPanic(r.Env, r.logger)(route.View), mws...)
		mr := r.r.Handle(route.Path, handler).Methods(methods...)
		if route.Name != "" {
			mr.Name(route.Name)
		}

		r.routes.add(mr, route)
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// Resolve reports which registered [Route] a request for path with method would reach
// and the parameters parsed out of path.
//
// If no Route matches, Resolve returns [gravepaint.ErrNotExist].
func (r *Router) Resolve(method, path string) (Match, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %s", gravepaint.ErrNotValid, err)
	}

	req, err := http.NewRequest(method, u.RequestURI(), nil)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %s", gravepaint.ErrNotValid, err)
	}

	var rm mux.RouteMatch
	if !r.r.Match(req, &rm) || rm.MatchErr != nil || rm.Route == nil {
		return Match{}, fmt.Errorf("%w: %s %s", gravepaint.ErrNotExist, method, path)
	}

	route, ok := r.routes.get(rm.Route)
	if !ok {
		return Match{}, fmt.Errorf("%w: %s %s", gravepaint.ErrNotExist, method, path)
	}

	params := rm.Vars
	if params == nil {
		params = make(map[string]string)
	}

	return Match{Route: route, Params: params}, nil
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix.
//
// e.g., r.Subrouter("/canvas") handles requests to endpoints like /canvas/view/1
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		Env:           r.Env,
		everyReqStack: append([]middleware.Adapter(nil), r.everyReqStack...),
		logger:        r.logger,
		logReq:        r.logReq,
		r:             r.r.PathPrefix(prefix).Subrouter(),
		routes:        r.routes,
	}
}

// URL builds the URL of the Route registered under name,
// filling its parameters from pairs of keys and values.
//
// e.g., r.URL("CanvasView", "id", "7") returns /canvas/view/7
func (r *Router) URL(name string, pairs ...string) (*url.URL, error) {
	mr := r.r.Get(name)
	if mr == nil {
		return nil, fmt.Errorf("%w: no route named %q", gravepaint.ErrNotExist, name)
	}

	u, err := mr.URL(pairs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", gravepaint.ErrNotValid, err)
	}

	return u, nil
}

// Lazy returns an [http.Handler] that builds its view by calling load
// on the first request it serves, and reuses that view thereafter.
// load is called at most once, even when first requests arrive concurrently.
func Lazy(load func() http.Handler) http.Handler {
	var (
		once sync.Once
		view http.Handler
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { view = load() })
		if view == nil {
			http.NotFound(w, r)
			return
		}

		view.ServeHTTP(w, r)
	})
}

// Params returns the named path parameters of the Route r matched.
func Params(r *http.Request) map[string]string {
	return mux.Vars(r)
}

// Param returns the named path parameter of the Route r matched,
// or an empty string if there is none.
func Param(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// cacheControlMiddleware helps by adding a "Cache-Control" header to the response.
func cacheControlMiddleware() middleware.Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "max-age=2592000") // 30 days
			handler.ServeHTTP(w, r)
		})
	}
}
