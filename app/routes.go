package app

import (
	"net/http"

	"github.com/gravepaint/gravepaint/http/router"
	"github.com/gravepaint/gravepaint/views"
)

// Route names, for reverse routing with (*router.Router).URL.
const (
	CanvasViewRoute      = "CanvasView"
	CustomerServiceRoute = "CustomerService"
	GravePaintRoute      = "GravePaint"
	GravePaintByIDRoute  = "GravePaintByID"
	HomeRoute            = "HomePage"
	LoginRoute           = "LoginRegister"
	PersonalRoute        = "Personal"
	TinyStarRoute        = "TinyStar"
)

// routes is the route table of the app.
//
// Forms POST from the browser, so with CORS enabled those routes answer preflight requests too.
func routes(v *views.Views, cors bool) []router.Route {
	writable := []string{http.MethodGet, http.MethodPost}
	if cors {
		writable = append(writable, http.MethodOptions)
	}

	return []router.Route{
		{Path: "/", Name: HomeRoute, View: http.HandlerFunc(v.Home)},
		{Path: "/Login", Name: LoginRoute, Methods: writable, View: http.HandlerFunc(v.Login)},
		{Path: "/gravepaint", Name: GravePaintRoute, Methods: writable, View: http.HandlerFunc(v.GravePaint)},
		{Path: "/gravepaint/{id}", Name: GravePaintByIDRoute, View: http.HandlerFunc(v.GravePaint)},
		{Path: "/personal", Name: PersonalRoute, View: http.HandlerFunc(v.Personal)},
		{Path: "/tinyStar", Name: TinyStarRoute, View: http.HandlerFunc(v.TinyStar)},
		{Path: "/customer-service", Name: CustomerServiceRoute, View: http.HandlerFunc(v.CustomerService)},
		{
			Path: "/canvas/view/{id}",
			Name: CanvasViewRoute,
			View: router.Lazy(func() http.Handler { return http.HandlerFunc(v.CanvasView) }),
		},
	}
}
