package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/api"
	"github.com/gravepaint/gravepaint/http/middleware"
	"github.com/gravepaint/gravepaint/http/resp"
	"github.com/gravepaint/gravepaint/http/router"
	"github.com/gravepaint/gravepaint/http/session"
	"github.com/gravepaint/gravepaint/identity"
	"github.com/gravepaint/gravepaint/logger"
	"github.com/gravepaint/gravepaint/views"
	_ "github.com/joho/godotenv/autoload"
)

const staticPrefix = "/static/"

// An App manages and exposes all components of a gravepaint web app to one another.
type App struct {
	*router.Router

	assistant *api.Assistant
	canvases  *api.Canvases
	cfg       *Config
	ctx       context.Context
	id        identity.Source
	l         logger.Logger
	out       io.Writer
	responder *resp.Responder
	sessions  session.SessionStorer
	srv       *http.Server
	users     *api.Users
	views     *views.Views
}

// New constructs an App from the provided options.
//
// Options run first.
// Every component they leave unset is then built from the Config,
// which LoadConfig reads when WithConfig is not among opts.
func New(opts ...Option) (*App, error) {
	a := &App{out: os.Stdout}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("%w: %s", gravepaint.ErrBadConfig, err)
		}
	}

	if a.cfg == nil {
		cfg, err := LoadConfig("")
		if err != nil {
			return nil, err
		}
		a.cfg = &cfg
	}
	cfg := *a.cfg

	if a.ctx == nil {
		a.ctx = context.Background()
	}

	if a.l == nil {
		a.l = defaultAppLogger(cfg, a.out)
	}

	if a.sessions == nil {
		s, err := defaultSessionStore(cfg)
		if err != nil {
			return nil, err
		}
		a.sessions = s
	}

	primary, assistant, err := defaultBackends(cfg, defaultClientLogger(cfg, a.out), a.id)
	if err != nil {
		return nil, err
	}
	a.users = api.NewUsers(primary)
	a.canvases = api.NewCanvases(primary)
	a.assistant = api.NewAssistant(assistant)

	a.responder = defaultResponder(cfg, a.l)
	a.views, err = views.New(views.Config{
		Assistant: a.assistant,
		Canvases:  a.canvases,
		Logger:    a.l,
		Responder: a.responder,
		Users:     a.users,
	})
	if err != nil {
		return nil, err
	}

	a.Router = router.New(
		cfg.Env,
		middleware.LogRequest(defaultHTTPLogger(cfg, a.out)),
		router.WithLogger(a.l),
		router.WithStatic(staticPrefix, cfg.Server.StaticDir),
	)
	a.Router.OnEveryRequest(defaultMiddlewares(cfg, a.sessions)...)
	a.Router.HandleRoutes(routes(a.views, cfg.Server.CORSOrigin != ""))

	if a.srv == nil {
		a.srv = defaultServer(a.ctx, cfg.Server)
	}

	a.l.Debug(fmt.Sprintf("app ready in %s, primary backend at %s", cfg.Env, primary.BaseURL()), nil)

	return a, nil
}

// Assistant exposes the calls to the assistant backend.
func (a *App) Assistant() *api.Assistant { return a.assistant }

// Canvases exposes the canvas calls to the primary backend.
func (a *App) Canvases() *api.Canvases { return a.canvases }

// Config returns a copy of the Config the App was built from.
func (a *App) Config() Config { return *a.cfg }

// Logger exposes the logger the App writes to.
func (a *App) Logger() logger.Logger { return a.l }

// Users exposes the account calls to the primary backend.
func (a *App) Users() *api.Users { return a.users }

// Guide begins the web server.
//
// These, and (*App).Shutdown, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
// - cancelling the context set by WithContext
func (a *App) Guide() error {
	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			a.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			cancel()
		case <-ctx.Done():
		}
	}()

	errs := make(chan error, 1)
	go func() {
		a.l.Info(fmt.Sprintf("running web server at %s", a.srv.Addr), nil)
		a.srv.Handler = a.Router
		err := a.srv.ListenAndServe()
		if err != http.ErrServerClosed {
			err = fmt.Errorf("could not listen: %w", err)
			a.l.Error(err.Error(), nil)
			errs <- err
			return
		}

		errs <- nil
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return a.Shutdown()
	}
}

// Shutdown shuts down the web server, waiting up to 5 seconds for open requests.
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.l.Info("shutting down web server", nil)
	err := a.srv.Shutdown(shutdownCtx)
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	a.l.Info("web server shutdown successfully", nil)
	return nil
}
