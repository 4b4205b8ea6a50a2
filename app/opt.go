package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gravepaint/gravepaint/http/session"
	"github.com/gravepaint/gravepaint/identity"
	"github.com/gravepaint/gravepaint/logger"
)

// An Option configures an *App under construction.
// Components an Option sets are not built from the Config by New.
type Option func(*App) error

// WithConfig uses cfg instead of reading one with LoadConfig.
func WithConfig(cfg Config) Option {
	return func(a *App) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		a.cfg = &cfg
		return nil
	}
}

// WithContext exposes the provided context.Context to the app.
// Requests handled by the web server derive from ctx,
// and cancelling it stops Guide.
func WithContext(ctx context.Context) Option {
	return func(a *App) error {
		if ctx == nil {
			return fmt.Errorf("context cannot be nil")
		}

		a.ctx = ctx
		return nil
	}
}

// WithIdentity sets the identity sent to the backends
// when a request's context carries none,
// as is the case outside of the web server.
func WithIdentity(src identity.Source) Option {
	return func(a *App) error {
		a.id = src
		return nil
	}
}

// WithLogger sets the logger the app and its views log to.
func WithLogger(l logger.Logger) Option {
	return func(a *App) error {
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}

		a.l = l
		return nil
	}
}

// WithOutput sends every log record built from the Config to w instead of os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		if w == nil {
			return fmt.Errorf("output cannot be nil")
		}

		a.out = w
		return nil
	}
}

// WithServer uses srv to serve the app.
// Its Handler is replaced by the app's router.
func WithServer(srv *http.Server) Option {
	return func(a *App) error {
		if srv == nil {
			return fmt.Errorf("server cannot be nil")
		}

		a.srv = srv
		return nil
	}
}

// WithSessionStore sets where user sessions are kept.
func WithSessionStore(store session.SessionStorer) Option {
	return func(a *App) error {
		if store == nil {
			return fmt.Errorf("session store cannot be nil")
		}

		a.sessions = store
		return nil
	}
}
