/*
Package app initializes and manages a gravepaint web app with sane defaults.

# App

The main entrypoint to package app is the [App] type, constructed with [New].
[*App.Guide] begins the web server and serves the route table:

  - /                  the home page
  - /Login             logging in and registering (GET, POST)
  - /gravepaint        painting a new canvas and saving it (GET, POST)
  - /gravepaint/{id}   painting an existing canvas
  - /personal          the logged-in user and their canvases
  - /tinyStar          every public canvas
  - /customer-service  searching canvases through the assistant
  - /canvas/view/{id}  viewing one canvas, named CanvasView

Stop the web server with [*App.Shutdown], by cancelling the context passed to [WithContext],
or by sending a signal [*App.Guide] listens for.

# Configuration

A [Config] is read by [LoadConfig] from its defaults,
then an optional YAML file named by CONFIG_FILE,
then environment variables.
Environment variables may be set in a file called ".env"
found at the directory the application is executed from.

Here are the available environment variables.
  - API_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for each call to a backend; default: 5s
  - API_TOKEN: a bearer token sent to both backends
  - APP_TITLE: the title of the application; default: GravePaint
  - ASSISTANT_API_URL: the base URL of the assistant backend; default: http://127.0.0.1:5000
  - BASE_URL: the base URL the application runs on; replaces HOST & PORT
  - CONFIG_FILE: the path of a YAML file of settings
  - CONTACT_US_EMAIL: the address shown to users when something breaks
  - CORS_ORIGIN: the one origin allowed to call the application from a browser
  - ENVIRONMENT: the environment the application is running in; cf. [gravepaint.Environment]
  - HOST: the host the application is running on; default: localhost
  - LOG_JSON: whether to log JSON in development
  - LOG_LEVEL: the level at which to begin logging; default: INFO
  - PORT: the port the application should listen on; default: :3000
  - PRIMARY_API_URL: the base URL of the primary backend; default: http://localhost:8090
  - REDIS_PASSWORD: the password for REDIS_URL, if it holds none
  - REDIS_URL: a redis:// URL; when set, sessions are stored in Redis instead of cookies
  - SENTRY_DSN: where errors are reported
  - SERVER_IDLE_TIMEOUT: the timeout for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - SESSION_MAX_AGE: how many seconds a session lives; default: 604800
  - STATIC_DIR: a directory of built client assets served under /static/
*/
package app
