package views

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/api"
	"github.com/gravepaint/gravepaint/http/client"
	"github.com/gravepaint/gravepaint/http/req"
	"github.com/gravepaint/gravepaint/http/resp"
	"github.com/gravepaint/gravepaint/logger"
)

// Components the Vue client mounts for each page.
const (
	CanvasViewComponent      = "CanvasView"
	CustomerServiceComponent = "CustomerService"
	GravePaintComponent      = "GravePaint"
	HomeComponent            = "HomePage"
	LoginComponent           = "LoginRegister"
	PersonalComponent        = "Personal"
	TinyStarComponent        = "TinyStar"
)

// Paths views redirect to.
const (
	HomePath     = "/"
	LoginPath    = "/Login"
	PersonalPath = "/personal"
)

// A UserService resolves accounts on the primary backend.
type UserService interface {
	Info(ctx context.Context) (gravepaint.User, error)
	Login(ctx context.Context, username, password string) (gravepaint.User, error)
	Register(ctx context.Context, username, password string) (gravepaint.User, error)
}

// A CanvasService reads and writes canvases on the primary backend.
type CanvasService interface {
	Get(ctx context.Context, userID, id int64) (gravepaint.Canvas, error)
	Load(ctx context.Context) ([]gravepaint.Canvas, error)
	Public(ctx context.Context) ([]gravepaint.Canvas, error)
	Save(ctx context.Context, c gravepaint.Canvas) error
}

// An AssistantService searches canvases on the assistant backend.
type AssistantService interface {
	Embed(ctx context.Context, canvasID int64) error
	Search(ctx context.Context, q api.SearchQuery) ([]gravepaint.SearchSource, error)
}

// Views serves every page.
type Views struct {
	assistant AssistantService
	canvases  CanvasService
	logger    logger.Logger
	now       func() time.Time
	parser    *req.Parser
	resp      *resp.Responder
	users     UserService
}

// Config holds what Views depend on.
type Config struct {
	Assistant AssistantService
	Canvases  CanvasService
	Logger    logger.Logger
	Responder *resp.Responder
	Users     UserService

	// Now reports the current time. It defaults to time.Now.
	Now func() time.Time
}

// New constructs Views from cfg.
//
// New returns gravepaint.ErrBadConfig if a backend service or the Responder is missing.
func New(cfg Config) (*Views, error) {
	if cfg.Assistant == nil || cfg.Canvases == nil || cfg.Users == nil {
		return nil, fmt.Errorf("%w: views require every backend service", gravepaint.ErrBadConfig)
	}

	if cfg.Responder == nil {
		return nil, fmt.Errorf("%w: views require a Responder", gravepaint.ErrBadConfig)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.New(nil)
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	v := &Views{
		assistant: cfg.Assistant,
		canvases:  cfg.Canvases,
		logger:    cfg.Logger,
		now:       cfg.Now,
		parser:    req.NewParser(),
		resp:      cfg.Responder,
		users:     cfg.Users,
	}

	return v, nil
}

// viewer returns the ID of the logged-in user, or zero for an anonymous visitor.
func viewer(r *http.Request) int64 {
	raw, ok := gravepaint.IdentityFromContext(r.Context())
	if !ok {
		return 0
	}

	id, err := gravepaint.ParseIdentity(raw)
	if err != nil {
		return 0
	}

	return id
}

// pathID parses the id path parameter.
func pathID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// backendFailure renders component with the status and message of err,
// the way every page presents a backend that refused or failed.
func (v *Views) backendFailure(w http.ResponseWriter, r *http.Request, component string, err error) {
	code := http.StatusBadGateway
	msg := err.Error()

	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.StatusCode
		if code < http.StatusBadRequest {
			code = http.StatusBadGateway
		}

		msg = apiErr.Message
	case client.IsTimeout(err):
		code = http.StatusGatewayTimeout
	case errors.Is(err, gravepaint.ErrNotExist):
		code = http.StatusNotFound
	case errors.Is(err, gravepaint.ErrMissingData), errors.Is(err, gravepaint.ErrNotValid):
		code = http.StatusBadRequest
	}

	v.logger.Warn("backend call failed", &logger.LogContext{Error: err, Request: r})

	if rerr := v.resp.Page(w, r, component, resp.Code(code), resp.Data(map[string]any{"error": msg})); rerr != nil {
		v.resp.Err(w, r, rerr)
	}
}

// invalid is the JSON body answering a request the parser rejected.
func invalid(msg string, err error) map[string]any {
	body := map[string]any{"error": msg}

	var verrs req.ValidationErrors
	if errors.As(err, &verrs) {
		body["validationErrors"] = []req.ValidationError(verrs)
	}

	return body
}
