package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"

	"github.com/go-redis/redis/v8"
	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/http/client"
	"github.com/gravepaint/gravepaint/http/middleware"
	"github.com/gravepaint/gravepaint/http/resp"
	"github.com/gravepaint/gravepaint/http/session"
	"github.com/gravepaint/gravepaint/identity"
	"github.com/gravepaint/gravepaint/logger"
	"golang.org/x/oauth2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultAppLogger constructs a [logger.Logger] configured for use in the application.
func defaultAppLogger(cfg Config, output io.Writer) logger.Logger {
	slogger := newSlogger(gravepaint.AppLogKind, cfg, output)
	l := logger.New(slogger)
	l.Debug("setting up app logger", nil)

	var appLogger logger.Logger = l
	if dsn := cfg.Log.SentryDSN; dsn != "" {
		appLogger = logger.NewSentryLogger(cfg.Env, l, dsn)
		l.Debug("using SentryLogger for app logger", nil)
	}

	slog.SetDefault(slogger)

	return appLogger
}

// defaultHTTPLogger constructs a [*log/slog.Logger] for use in HTTP router logging.
func defaultHTTPLogger(cfg Config, output io.Writer) *slog.Logger {
	sl := newSlogger(gravepaint.HTTPLogKind, cfg, output)
	sl.Debug("setting up HTTP router logger")

	return sl
}

// defaultClientLogger constructs a [*log/slog.Logger] for logging calls to the backends.
func defaultClientLogger(cfg Config, output io.Writer) *slog.Logger {
	sl := newSlogger(gravepaint.ClientLogKind, cfg, output)
	sl.Debug("setting up backend client logger")

	return sl
}

// newSlogger toggles constructing the specific [*log/slog.Logger]
// from the given parameters.
//
// Outside of development, or when LOG_JSON is true, records are JSON.
// HTTP records carry neither level nor message.
func newSlogger(kind slog.Value, cfg Config, out io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(gravepaint.NewLogLevel(cfg.Log.Level))

	useJSON := !cfg.Env.IsDevelopment() || cfg.Log.JSON
	isHTTP := kind.String() == gravepaint.HTTPLogKind.String()

	var handler slog.Handler
	switch {
	case isHTTP && useJSON:
		opts := &slog.HandlerOptions{
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = logger.DeleteLevelAttr(groups, a)
				return logger.DeleteMessageAttr(groups, a)
			},
		}
		handler = slog.NewJSONHandler(out, opts)

	case isHTTP:
		opts := &slog.HandlerOptions{
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = logger.DeleteLevelAttr(groups, a)
				return logger.DeleteMessageAttr(groups, a)
			},
		}
		handler = slog.NewTextHandler(out, opts)

	case useJSON:
		opts := &slog.HandlerOptions{
			AddSource:   true,
			Level:       lvl,
			ReplaceAttr: logger.TruncSourceAttr,
		}
		handler = slog.NewJSONHandler(out, opts)

	default:
		opts := &slog.HandlerOptions{
			AddSource: true,
			Level:     lvl,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a = logger.ColorizeLevel(groups, a)
				return logger.TruncSourceAttr(groups, a)
			},
		}
		handler = slog.NewTextHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		{Key: gravepaint.LogKindKey, Value: kind},
	})

	return slog.New(handler)
}

// defaultBackends constructs the clients for the primary and the assistant backends.
//
// Both send the userId of the logged-in user found in a request's context,
// falling back to src.
func defaultBackends(cfg Config, l *slog.Logger, src identity.Source) (primary, assistant *client.Client, err error) {
	opts := []client.Option{
		client.WithIdentity(identity.First(identity.FromContext(), src)),
		client.WithLogger(l),
	}

	if cfg.API.Token != "" {
		opts = append(opts, client.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.API.Token,
			TokenType:   "Bearer",
		})))
	}

	primary, err = client.New(client.Config{BaseURL: cfg.API.PrimaryURL, Timeout: cfg.API.Timeout}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("primary backend: %w", err)
	}

	assistant, err = client.New(client.Config{BaseURL: cfg.API.AssistantURL, Timeout: cfg.API.Timeout}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("assistant backend: %w", err)
	}

	return primary, assistant, nil
}

// defaultMiddlewares is the stack every request passes through, outermost first.
func defaultMiddlewares(cfg Config, sessions session.SessionStorer) []middleware.Adapter {
	return []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.ForceHTTPS(cfg.Env),
		middleware.CORS(cfg.Server.CORSOrigin),
		middleware.RateLimit(middleware.NewVisitors()),
		middleware.InjectSession(sessions),
		middleware.InjectIdentity(),
	}
}

// defaultResponder configures the [*resp.Responder] used by the views.
func defaultResponder(cfg Config, l logger.Logger) *resp.Responder {
	args := []resp.ResponderOptFn{
		resp.WithLogger(l),
		resp.WithRootUrl(cfg.BaseURL),
		resp.WithScripts(cfg.Server.Scripts...),
		resp.WithStyles(cfg.Server.Styles...),
		resp.WithTitle(cfg.Title),
	}

	if cfg.Contact != "" {
		args = append(args, resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, cfg.Contact)))
	}

	return resp.NewResponder(args...)
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// Sessions live in Redis when REDIS_URL is set and in cookies otherwise.
// Both session keys must be valid hex encoded values; cf. [encoding/hex].
func defaultSessionStore(cfg Config) (session.SessionStorer, error) {
	sc := session.Config{
		AuthKey:     cfg.Session.AuthKey,
		EncryptKey:  cfg.Session.EncryptKey,
		Env:         cfg.Env,
		SessionName: sessionName(cfg.Title),
	}

	args := []session.ServiceOpt{session.WithMaxAge(cfg.Session.MaxAge)}
	if cfg.Session.RedisURL != "" {
		opts, err := redisOptions(cfg.Session)
		if err != nil {
			return nil, err
		}

		args = append(args, session.WithRedis(opts.Addr, opts.Password))
	}

	return session.NewStoreService(sc, args...)
}

// sessionName normalizes title into a cookie-safe name.
func sessionName(title string) string {
	title = cases.Lower(language.English).String(title)
	title = regexp.MustCompile(`[,':]`).ReplaceAllString(title, "")
	title = regexp.MustCompile(`\s`).ReplaceAllString(title, "-")

	return "gravepaint-" + title
}

// redisOptions parses REDIS_URL, with REDIS_PASSWORD taking precedence over any password in it.
func redisOptions(cfg SessionConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: redis URL: %s", gravepaint.ErrBadConfig, err)
	}

	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}

	return opts, nil
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context, cfg ServerConfig) *http.Server {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

// NewRedisClient constructs a client for the Redis at REDIS_URL.
//
// NewRedisClient returns gravepaint.ErrBadConfig when no Redis is configured.
func NewRedisClient(cfg Config) (*redis.Client, error) {
	if cfg.Session.RedisURL == "" {
		return nil, fmt.Errorf("%w: %s is not set", gravepaint.ErrBadConfig, redisURLEnvVar)
	}

	opts, err := redisOptions(cfg.Session)
	if err != nil {
		return nil, err
	}

	return redis.NewClient(opts), nil
}
