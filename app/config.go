package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gravepaint/gravepaint"
	"gopkg.in/yaml.v3"
)

const (
	// Config file
	ConfigFileEnvVar = "CONFIG_FILE"

	// App metadata
	appTitleEnvVar  = "APP_TITLE"
	defaultAppTitle = "GravePaint"
	contactEnvVar   = "CONTACT_US_EMAIL"

	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar  = "LOG_LEVEL"
	defaultLogLvl   = "INFO"
	logJSONEnvVar   = "LOG_JSON"
	sentryDsnEnvVar = "SENTRY_DSN"

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second
	corsOriginEnvVar          = "CORS_ORIGIN"
	staticDirEnvVar           = "STATIC_DIR"

	// Backend defaults
	primaryAPIEnvVar    = "PRIMARY_API_URL"
	DefaultPrimaryAPI   = "http://localhost:8090"
	assistantAPIEnvVar  = "ASSISTANT_API_URL"
	DefaultAssistantAPI = "http://127.0.0.1:5000"
	apiTimeoutEnvVar    = "API_TIMEOUT"
	DefaultAPITimeout   = 5 * time.Second
	apiTokenEnvVar      = "API_TOKEN"

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionMaxAgeEnvVar     = "SESSION_MAX_AGE"
	DefaultSessionMaxAge    = 3600 * 24 * 7
	redisURLEnvVar          = "REDIS_URL"
	redisPassEnvVar         = "REDIS_PASSWORD"
)

var defaultBaseURL = "http://" + DefaultHost + DefaultPort

// A Config holds every setting a gravepaint app reads at startup.
//
// Values come from, in increasing precedence,
// [DefaultConfig], a YAML file and environment variables.
type Config struct {
	Env     gravepaint.Environment `yaml:"environment"`
	Title   string                 `yaml:"title"`
	Contact string                 `yaml:"contact"`
	BaseURL string                 `yaml:"base_url"`

	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	JSON      bool   `yaml:"json"`
	SentryDSN string `yaml:"sentry_dsn"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigin   string        `yaml:"cors_origin"`

	// StaticDir, when set, is served under /static/.
	StaticDir string   `yaml:"static_dir"`
	Scripts   []string `yaml:"scripts"`
	Styles    []string `yaml:"styles"`
}

// An APIConfig points at the two backends.
type APIConfig struct {
	PrimaryURL   string        `yaml:"primary_url"`
	AssistantURL string        `yaml:"assistant_url"`
	Timeout      time.Duration `yaml:"timeout"`

	// Token is sent as a bearer token to both backends when set.
	Token string `yaml:"token"`
}

type SessionConfig struct {
	// Hex-encoded keys
	AuthKey    string `yaml:"auth_key"`
	EncryptKey string `yaml:"encrypt_key"`

	MaxAge        int    `yaml:"max_age"`
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
}

// DefaultConfig returns the Config used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Env:     gravepaint.Development,
		Title:   defaultAppTitle,
		BaseURL: defaultBaseURL,
		Log:     LogConfig{Level: defaultLogLvl},
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			ReadTimeout:  DefaultServerReadTimeout,
			WriteTimeout: DefaultServerWriteTimeout,
			IdleTimeout:  DefaultServerIdleTimeout,
		},
		API: APIConfig{
			PrimaryURL:   DefaultPrimaryAPI,
			AssistantURL: DefaultAssistantAPI,
			Timeout:      DefaultAPITimeout,
		},
		Session: SessionConfig{MaxAge: DefaultSessionMaxAge},
	}
}

// LoadConfig builds a Config from the defaults,
// the YAML file at path and then the environment.
//
// An empty path reads the file named by CONFIG_FILE, if any.
// A missing file is only an error when a path was asked for.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigFileEnvVar)
	}

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return cfg, fmt.Errorf("%w: opening %s: %s", gravepaint.ErrBadConfig, path, err)
		default:
			err = cfg.decode(f)
			f.Close()
			if err != nil {
				return cfg, err
			}
		}
	}

	cfg.fromEnv()

	return cfg, cfg.Validate()
}

// ReadConfig decodes YAML from r over the defaults.
// The environment is not consulted.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.decode(r); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: decoding config: %s", gravepaint.ErrBadConfig, err)
	}

	c.Env = gravepaint.Environment(strings.ToUpper(c.Env.String()))

	return nil
}

// fromEnv overwrites c with any environment variable set.
func (c *Config) fromEnv() {
	c.Env = gravepaint.EnvVarOrEnv(environmentEnvVar, c.Env)
	c.Title = gravepaint.EnvVarOrString(appTitleEnvVar, c.Title)
	c.Contact = gravepaint.EnvVarOrString(contactEnvVar, c.Contact)

	c.Log.Level = gravepaint.EnvVarOrString(logLevelEnvVar, c.Log.Level)
	c.Log.JSON = gravepaint.EnvVarOrBool(logJSONEnvVar, c.Log.JSON)
	c.Log.SentryDSN = gravepaint.EnvVarOrString(sentryDsnEnvVar, c.Log.SentryDSN)

	c.Server.Host = gravepaint.EnvVarOrString(hostEnvVar, c.Server.Host)
	c.Server.Port = gravepaint.EnvVarOrString(portEnvVar, c.Server.Port)
	c.Server.ReadTimeout = gravepaint.EnvVarOrDuration(serverReadTimeoutEnvVar, c.Server.ReadTimeout)
	c.Server.WriteTimeout = gravepaint.EnvVarOrDuration(serverWriteTimeoutEnvVar, c.Server.WriteTimeout)
	c.Server.IdleTimeout = gravepaint.EnvVarOrDuration(serverIdleTimeoutEnvVar, c.Server.IdleTimeout)
	c.Server.CORSOrigin = gravepaint.EnvVarOrString(corsOriginEnvVar, c.Server.CORSOrigin)
	c.Server.StaticDir = gravepaint.EnvVarOrString(staticDirEnvVar, c.Server.StaticDir)

	c.API.PrimaryURL = gravepaint.EnvVarOrString(primaryAPIEnvVar, c.API.PrimaryURL)
	c.API.AssistantURL = gravepaint.EnvVarOrString(assistantAPIEnvVar, c.API.AssistantURL)
	c.API.Timeout = gravepaint.EnvVarOrDuration(apiTimeoutEnvVar, c.API.Timeout)
	c.API.Token = gravepaint.EnvVarOrString(apiTokenEnvVar, c.API.Token)

	c.Session.AuthKey = gravepaint.EnvVarOrString(SessionAuthKeyEnvVar, c.Session.AuthKey)
	c.Session.EncryptKey = gravepaint.EnvVarOrString(SessionEncryptKeyEnvVar, c.Session.EncryptKey)
	c.Session.MaxAge = gravepaint.EnvVarOrInt(sessionMaxAgeEnvVar, c.Session.MaxAge)
	c.Session.RedisURL = gravepaint.EnvVarOrString(redisURLEnvVar, c.Session.RedisURL)
	c.Session.RedisPassword = gravepaint.EnvVarOrString(redisPassEnvVar, c.Session.RedisPassword)

	// BASE_URL replaces HOST & PORT
	if u := gravepaint.EnvVarOrURL(BaseURLEnvVar, ""); u != nil {
		c.BaseURL = u.String()
	} else if os.Getenv(hostEnvVar) != "" || os.Getenv(portEnvVar) != "" {
		c.BaseURL = "http://" + c.Server.Host + c.Server.Addr()
	}
}

// Validate reports the first setting c cannot run with.
func (c Config) Validate() error {
	if err := c.Env.Valid(); err != nil {
		return fmt.Errorf("%w: environment %q", gravepaint.ErrBadConfig, c.Env)
	}

	if u, err := url.ParseRequestURI(c.BaseURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: base URL %q is not absolute", gravepaint.ErrBadConfig, c.BaseURL)
	}

	for name, raw := range map[string]string{"primary": c.API.PrimaryURL, "assistant": c.API.AssistantURL} {
		if u, err := url.ParseRequestURI(raw); err != nil || !u.IsAbs() {
			return fmt.Errorf("%w: %s API URL %q is not absolute", gravepaint.ErrBadConfig, name, raw)
		}
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: API timeout cannot be negative", gravepaint.ErrBadConfig)
	}

	if c.Session.MaxAge < 0 {
		return fmt.Errorf("%w: session max age cannot be negative", gravepaint.ErrBadConfig)
	}

	return nil
}

// Addr is the port the web server listens on, always prefixed with ":".
func (c ServerConfig) Addr() string {
	if c.Port == "" {
		return DefaultPort
	}

	if c.Port[0] != ':' {
		return ":" + c.Port
	}

	return c.Port
}
