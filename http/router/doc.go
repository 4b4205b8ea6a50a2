/*
Package router maps navigated paths onto the page views of gravepaint.

A [Router] is a thin wrapper around [mux.Router].
Every page is described once, at startup, by a [Route]:
a path pattern, the methods it answers, an optional symbolic name
and the [http.Handler] rendering the page.
Named segments in a path, such as {id} in /canvas/view/{id},
reach the view through [Params] and [Param].

Before a request reaches a view, the middlewares registered through
[Router.OnEveryRequest], those passed to [Router.HandleRoutes]
and then those set on the Route itself are called in that order.

Views expensive to build can be wrapped in [Lazy],
which defers construction until the first request for them.

A Router does not register a fallback for unmatched paths.
[Router.HandleNotFound] installs one when a page for that is wanted.
*/
package router
