package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/identity"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds each request when Config.Timeout is zero.
	DefaultTimeout = 5 * time.Second

	jsonMediaType = "application/json"
)

// Config is what a Client is bound to.
type Config struct {
	// BaseURL is the absolute URL every request path is resolved against.
	BaseURL string

	// Timeout bounds each request, from dialing through reading the body.
	// Zero means DefaultTimeout.
	Timeout time.Duration

	// Headers are set on every request that does not already carry them.
	Headers http.Header
}

// A Client sends requests to a single backend.
// A Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	headers http.Header
	hc      *http.Client
}

// An Option configures a Client.
type Option func(*options)

type options struct {
	identity     identity.Source
	interceptors []Interceptor
	logger       *slog.Logger
	tokens       oauth2.TokenSource
	transport    http.RoundTripper
}

// WithIdentity sets the Source whose user ID is attached to every request.
func WithIdentity(src identity.Source) Option {
	return func(o *options) { o.identity = src }
}

// WithInterceptors appends interceptors run after identity injection.
func WithInterceptors(is ...Interceptor) Option {
	return func(o *options) { o.interceptors = append(o.interceptors, is...) }
}

// WithLogger logs every round trip to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTokenSource authorizes every request with a bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithTransport sets the http.RoundTripper that finally dispatches requests.
// By default that is http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// New constructs a Client bound to cfg.
//
// New returns gravepaint.ErrBadConfig if cfg.BaseURL is not an absolute URL
// or cfg.Timeout is negative.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := parseBase(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout cannot be negative: %s", gravepaint.ErrBadConfig, cfg.Timeout)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	o := new(options)
	for _, opt := range opts {
		opt(o)
	}

	rt := o.transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	if o.tokens != nil {
		rt = &oauth2.Transport{Source: o.tokens, Base: rt}
	}

	is := make([]Interceptor, 0, len(o.interceptors)+2)
	is = append(is, InjectIdentity(o.identity))
	is = append(is, o.interceptors...)
	is = append(is, LogRoundTrip(o.logger))

	headers := cfg.Headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}

	if headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", jsonMediaType)
	}

	c := &Client{
		base:    base,
		headers: headers,
		hc: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: Chain(rt, is...),
		},
	}

	return c, nil
}

// BaseURL returns a copy of the URL the Client resolves paths against.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Timeout returns the bound on each request.
func (c *Client) Timeout() time.Duration { return c.hc.Timeout }

// NewRequest constructs a request for path resolved against the base URL,
// carrying the Client's default headers.
// path may carry a query string.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	return req, nil
}

// Do sends req, returning the response or error unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.hc.Do(req)
}

// Get sends a GET request for path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	return c.Do(req)
}

// PostJSON sends a POST request for path with v encoded as JSON in the body.
// A nil v sends no body.
func (c *Client) PostJSON(ctx context.Context, path string, v any) (*http.Response, error) {
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", gravepaint.ErrNotValid, err)
		}

		body = bytes.NewReader(b)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	return c.Do(req)
}

// IsTimeout reports whether err came from a request running out of time.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// resolve appends path to the path of the base URL, keeping its escaping.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", gravepaint.ErrNotValid, err)
	}

	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("%w: %q must be relative to the base URL", gravepaint.ErrNotValid, path)
	}

	u := c.BaseURL()
	raw := strings.TrimRight(u.EscapedPath(), "/") + "/" + strings.TrimLeft(ref.EscapedPath(), "/")
	p, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", gravepaint.ErrNotValid, err)
	}

	u.Path = p
	u.RawPath = raw
	u.RawQuery = ref.RawQuery

	return u, nil
}

func parseBase(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", gravepaint.ErrBadConfig)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", gravepaint.ErrBadConfig, err)
	}

	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL must be absolute: %q", gravepaint.ErrBadConfig, raw)
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u, nil
}
