package views

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/api"
	"github.com/gravepaint/gravepaint/http/middleware"
	"github.com/gravepaint/gravepaint/http/resp"
	"github.com/gravepaint/gravepaint/http/router"
	"github.com/gravepaint/gravepaint/http/session"
	"github.com/gravepaint/gravepaint/logger"
)

// maxCanvasBody bounds the size of a canvas posted to the editor.
const maxCanvasBody = 8 << 20

// A LoginMode is what the login page asks of the primary backend.
type LoginMode string

const (
	ModeLogin    LoginMode = "login"
	ModeRegister LoginMode = "register"
)

func (m LoginMode) String() string { return string(m) }

func (m LoginMode) Valid() error {
	switch m {
	case ModeLogin, ModeRegister:
		return nil
	default:
		return fmt.Errorf("%w: login mode %q", gravepaint.ErrNotValid, m)
	}
}

// Home renders the landing page.
func (v *Views) Home(w http.ResponseWriter, r *http.Request) {
	if err := v.resp.Page(w, r, HomeComponent); err != nil {
		v.resp.Err(w, r, err)
	}
}

// loginForm is what the login page submits.
type loginForm struct {
	Username string    `json:"username" schema:"username" validate:"required,max=64"`
	Password string    `json:"password" schema:"password" validate:"required"`
	Mode     LoginMode `json:"mode" schema:"mode" validate:"omitempty,enum"`
}

// Login renders the login and registration page on GET.
//
// On POST, Login logs the user in, or registers them when mode is "register",
// and records their ID in the session.
// The form may be submitted as JSON or URL encoded.
func (v *Views) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		if err := v.resp.Page(w, r, LoginComponent); err != nil {
			v.resp.Err(w, r, err)
		}
		return
	}

	var form loginForm
	if err := v.parser.ParseRequest(r, &form); err != nil {
		v.loginFailed(w, r, http.StatusBadRequest, err)
		return
	}

	call := v.users.Login
	if form.Mode == ModeRegister {
		call = v.users.Register
	}

	user, err := call(r.Context(), form.Username, form.Password)
	if err != nil {
		if !refused(err) {
			v.backendFailure(w, r, LoginComponent, err)
			return
		}

		v.loginFailed(w, r, http.StatusUnauthorized, err)
		return
	}

	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		v.resp.Err(w, r, resp.ErrNoSession)
		return
	}

	if err := s.RegisterUser(w, r, user.Identity()); err != nil {
		v.resp.Err(w, r, err)
		return
	}

	v.logger.Info("user logged in", &logger.LogContext{Request: r, User: user})

	if resp.WantsJSON(r) {
		if err := v.resp.Json(w, r, resp.User(user)); err != nil {
			v.resp.Err(w, r, err)
		}
		return
	}

	if err := v.resp.Redirect(w, r, resp.Url(PersonalPath)); err != nil {
		v.resp.Err(w, r, err)
	}
}

// refused reports whether err is the primary backend turning the credentials down,
// as opposed to the backend failing or being unreachable.
func refused(err error) bool {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}

	return errors.Is(err, gravepaint.ErrNotValid) || errors.Is(err, gravepaint.ErrMissingData)
}

// loginFailed answers a failed login with code for JSON requests,
// or sends the user back to the login page with a flash.
func (v *Views) loginFailed(w http.ResponseWriter, r *http.Request, code int, err error) {
	v.logger.Info("login failed", &logger.LogContext{Error: err, Request: r})

	if resp.WantsJSON(r) {
		if jerr := v.resp.Json(w, r, resp.Code(code), resp.Data(invalid(session.BadCredsMsg, err))); jerr != nil {
			v.resp.Err(w, r, jerr)
		}
		return
	}

	opts := []resp.Fn{resp.Url(LoginPath), resp.Code(code)}
	if _, ok := middleware.SessionFromContext(r.Context()); ok {
		opts = append(opts, resp.Flash(session.Flash{Class: session.FlashError, Msg: session.BadCredsMsg}))
	}

	if rerr := v.resp.Redirect(w, r, opts...); rerr != nil {
		v.resp.Err(w, r, rerr)
	}
}

// GravePaint renders the canvas editor on GET,
// loading the canvas identified by the id path parameter if there is one.
//
// On POST, GravePaint saves the canvas in the JSON body
// and asks the assistant to index it.
// The editor assigns canvas IDs, so a canvas without one is rejected.
func (v *Views) GravePaint(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		v.saveCanvas(w, r)
		return
	}

	raw := router.Param(r, "id")
	if raw == "" {
		if err := v.resp.Page(w, r, GravePaintComponent, resp.Data(map[string]any{"canvas": nil})); err != nil {
			v.resp.Err(w, r, err)
		}
		return
	}

	id, ok := pathID(raw)
	if !ok {
		v.backendFailure(w, r, GravePaintComponent, gravepaint.ErrNotExist)
		return
	}

	c, err := v.canvases.Get(r.Context(), viewer(r), id)
	if err != nil {
		v.backendFailure(w, r, GravePaintComponent, err)
		return
	}

	if err := v.resp.Page(w, r, GravePaintComponent, resp.Data(map[string]any{"canvas": c})); err != nil {
		v.resp.Err(w, r, err)
	}
}

func (v *Views) saveCanvas(w http.ResponseWriter, r *http.Request) {
	userID := viewer(r)
	if userID == 0 {
		if err := v.resp.Json(w, r, resp.Code(http.StatusUnauthorized)); err != nil {
			v.resp.Err(w, r, err)
		}
		return
	}

	var c gravepaint.Canvas
	if err := v.parser.ParseBody(http.MaxBytesReader(w, r.Body, maxCanvasBody), &c); err != nil {
		if jerr := v.resp.Json(w, r, resp.Code(http.StatusBadRequest), resp.Data(invalid("malformed canvas", err))); jerr != nil {
			v.resp.Err(w, r, jerr)
		}
		return
	}

	c.UserID = userID
	if err := v.canvases.Save(r.Context(), c); err != nil {
		v.backendFailure(w, r, GravePaintComponent, err)
		return
	}

	// NOTE: search results lag behind a failed indexing, the save itself stands
	if err := v.assistant.Embed(r.Context(), c.ID); err != nil {
		v.logger.Warn("indexing canvas failed", &logger.LogContext{
			Data:    map[string]any{"canvas_id": c.ID},
			Error:   err,
			Request: r,
		})
	}

	if err := v.resp.Json(w, r, resp.Data(map[string]any{"canvas": c.ID})); err != nil {
		v.resp.Err(w, r, err)
	}
}

// Personal renders the logged-in user's page with their canvases.
// Anonymous visitors are sent to the login page.
func (v *Views) Personal(w http.ResponseWriter, r *http.Request) {
	if viewer(r) == 0 {
		v.toLogin(w, r)
		return
	}

	user, err := v.users.Info(r.Context())
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			v.toLogin(w, r)
			return
		}

		v.backendFailure(w, r, PersonalComponent, err)
		return
	}

	canvases, err := v.canvases.Load(r.Context())
	if err != nil {
		v.backendFailure(w, r, PersonalComponent, err)
		return
	}

	data := map[string]any{"user": user, "canvases": canvases}
	if err := v.resp.Page(w, r, PersonalComponent, resp.User(user), resp.Data(data)); err != nil {
		v.resp.Err(w, r, err)
	}
}

func (v *Views) toLogin(w http.ResponseWriter, r *http.Request) {
	if resp.WantsJSON(r) {
		if err := v.resp.Json(w, r, resp.Code(http.StatusUnauthorized)); err != nil {
			v.resp.Err(w, r, err)
		}
		return
	}

	if err := v.resp.Redirect(w, r, resp.Url(LoginPath)); err != nil {
		v.resp.Err(w, r, err)
	}
}

// TinyStar renders the public gallery.
func (v *Views) TinyStar(w http.ResponseWriter, r *http.Request) {
	canvases, err := v.canvases.Public(r.Context())
	if err != nil {
		v.backendFailure(w, r, TinyStarComponent, err)
		return
	}

	now := v.now()
	id := viewer(r)
	for i := range canvases {
		canvases[i] = canvases[i].ForViewer(id, now)
	}

	if err := v.resp.Page(w, r, TinyStarComponent, resp.Data(map[string]any{"canvases": canvases})); err != nil {
		v.resp.Err(w, r, err)
	}
}

type searchParams struct {
	Q string `schema:"q" validate:"max=500"`
}

// CustomerService renders the customer-service page.
// When the q query parameter is set, the page carries the assistant's matches for it.
func (v *Views) CustomerService(w http.ResponseWriter, r *http.Request) {
	var params searchParams
	if err := v.parser.ParseQueryParams(r.URL.Query(), &params); err != nil {
		v.backendFailure(w, r, CustomerServiceComponent, err)
		return
	}

	q := strings.TrimSpace(params.Q)
	if q == "" {
		if err := v.resp.Page(w, r, CustomerServiceComponent, resp.Data(map[string]any{"query": ""})); err != nil {
			v.resp.Err(w, r, err)
		}
		return
	}

	sources, err := v.assistant.Search(r.Context(), api.SearchQuery{Query: q, UserID: viewer(r)})
	if err != nil {
		v.backendFailure(w, r, CustomerServiceComponent, err)
		return
	}

	data := map[string]any{"query": q, "sources": sources}
	if err := v.resp.Page(w, r, CustomerServiceComponent, resp.Data(data)); err != nil {
		v.resp.Err(w, r, err)
	}
}

// CanvasView renders the read-only view of the canvas identified by the id path parameter,
// holding only the heritages the visitor may see.
func (v *Views) CanvasView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(router.Param(r, "id"))
	if !ok {
		v.backendFailure(w, r, CanvasViewComponent, gravepaint.ErrNotExist)
		return
	}

	userID := viewer(r)
	c, err := v.canvases.Get(r.Context(), userID, id)
	if err != nil {
		v.backendFailure(w, r, CanvasViewComponent, err)
		return
	}

	c = c.ForViewer(userID, v.now())
	if err := v.resp.Page(w, r, CanvasViewComponent, resp.Data(map[string]any{"canvas": c})); err != nil {
		v.resp.Err(w, r, err)
	}
}
