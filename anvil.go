package anvil

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/csrf"
	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/route"
	"github.com/dmitrymomot/anvil/pkg/session"
	"github.com/dmitrymomot/anvil/pkg/view"
)

// Type aliases - public API
type (
	// App owns the route table, the controller registry and the HTTP server.
	App = internal.App

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// HandlerFunc is the signature of middleware-wrapped handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from dispatch.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Config is the environment-driven application configuration.
	Config = internal.Config

	// Component is the interface for self-rendering values such as templ components.
	Component = internal.Component

	// Controller is the before/action/after contract.
	Controller = internal.Controller

	// ControllerFactory builds a fresh controller per dispatch or embed.
	ControllerFactory = internal.ControllerFactory

	// Action is a controller operation.
	Action = internal.Action

	// Actions maps action names to operations.
	Actions = internal.Actions

	// Base is the default controller behaviour: origin check and PJAX headers.
	Base = internal.Base

	// Props maps embed prop names to setters.
	Props = internal.Props

	// PropSetter assigns one embed prop.
	PropSetter = internal.PropSetter

	// PropsReceiver is implemented by controllers accepting embed props.
	PropsReceiver = internal.PropsReceiver

	// Response is a renderable action result.
	Response = internal.Response

	// Template renders a named template with a scope.
	Template = internal.Template

	// TemplateCallback runs right before a template is rendered.
	TemplateCallback = internal.TemplateCallback

	// Payload renders a value as JSON.
	Payload = internal.Payload

	// Opaque renders a Component.
	Opaque = internal.Opaque

	// EmbedParams describes a nested controller run.
	EmbedParams = internal.EmbedParams

	// EmbedProp is one prop of an embed.
	EmbedProp = internal.EmbedProp

	// EmbedError wraps a failure of a non-silent embed.
	EmbedError = internal.EmbedError

	// HTTPError is an error carrying an HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Diagnostics records dispatch, embed and render timings of a request.
	Diagnostics = internal.Diagnostics

	// DiagnosticEvent is one timed step of a request.
	DiagnosticEvent = internal.DiagnosticEvent

	// ResponseWriter wraps http.ResponseWriter with write hooks.
	ResponseWriter = internal.ResponseWriter

	// Extractor tries sources in order and returns the first value found.
	Extractor = internal.Extractor

	// ExtractorSource reads a value from the request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// CookieAttr overrides a cookie attribute for a single write.
	CookieAttr = cookie.Attr

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session is a named server-side session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store
)

// DefaultAction is the action run when a route or embed names none.
const DefaultAction = internal.DefaultAction

// Reserved template scope keys.
const (
	ScopeEnv            = internal.ScopeEnv
	ScopeIsPjax         = internal.ScopeIsPjax
	ScopeCSRFToken      = internal.ScopeCSRFToken
	ScopeBuildTimestamp = internal.ScopeBuildTimestamp
	ScopeDiagnostics    = internal.ScopeDiagnostics
)

// Diagnostic event kinds.
const (
	EventDispatch = internal.EventDispatch
	EventEmbed    = internal.EventEmbed
	EventRender   = internal.EventRender
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	routes, _ := route.LoadFile("routes.yaml")
//	app := anvil.New(
//	    anvil.WithRoutes(routes),
//	    anvil.WithViews(view.NewSet(os.DirFS("templates"))),
//	    anvil.WithController("user", controllers.NewUser(repo)),
//	)
//
//	err := app.Run(":8080", anvil.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// LoadConfig parses Config from the process environment.
func LoadConfig() (Config, error) {
	return internal.LoadConfig()
}

// App options

// WithConfig applies an environment-driven Config.
func WithConfig(cfg Config) Option {
	return internal.WithConfig(cfg)
}

// WithRoutes sets the route table used for dispatch and URL building.
func WithRoutes(t *route.Table) Option {
	return internal.WithRoutes(t)
}

// WithController registers a controller factory under name.
func WithController(name string, factory ControllerFactory) Option {
	return internal.WithController(name, factory)
}

// WithViews sets the templating collaborator.
func WithViews(f view.Factory) Option {
	return internal.WithViews(f)
}

// WithScopeDefaults sets template variables every render starts with.
func WithScopeDefaults(vars map[string]any) Option {
	return internal.WithScopeDefaults(vars)
}

// WithEnv sets the environment name exposed to templates.
func WithEnv(env string) Option {
	return internal.WithEnv(env)
}

// WithBuildTimestamp sets the build timestamp of PJAX version tags.
func WithBuildTimestamp(ts int64) Option {
	return internal.WithBuildTimestamp(ts)
}

// WithDefaultLayout sets the layout used by controllers that set none.
func WithDefaultLayout(layout string) Option {
	return internal.WithDefaultLayout(layout)
}

// WithMaxEmbedDepth limits embed nesting.
func WithMaxEmbedDepth(depth int) Option {
	return internal.WithMaxEmbedDepth(depth)
}

// WithTrustedOrigins adds hosts accepted by the origin check.
func WithTrustedOrigins(hosts ...string) Option {
	return internal.WithTrustedOrigins(hosts...)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	anvil.New(
//	    anvil.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom error handler for dispatch errors.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
//
// Example:
//
//	anvil.New(
//	    anvil.WithLogger("web", cfg.Logger, middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, cfg logger.Config, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, cfg, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithCookieOptions configures the cookie manager.
//
// Example:
//
//	anvil.New(
//	    anvil.WithCookieOptions(
//	        anvil.WithCookieSecret(os.Getenv("COOKIE_SECRET")),
//	        anvil.WithCookieSecure(true),
//	    ),
//	)
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithCSRFOptions configures the CSRF token manager.
func WithCSRFOptions(opts ...csrf.Option) Option {
	return internal.WithCSRFOptions(opts...)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	anvil.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Controllers and responses

// Prop returns a setter storing embed prop values into dst.
// String values are converted to the field type.
//
// Example:
//
//	func (c *CardController) Props() anvil.Props {
//	    return anvil.Props{"id": anvil.Prop(&c.ID)}
//	}
func Prop[T ~string | ~int | ~int64 | ~float64 | ~bool](dst *T) PropSetter {
	return internal.Prop(dst)
}

// PropValue returns a setter accepting only values of type T.
func PropValue[T any](dst *T) PropSetter {
	return internal.PropValue(dst)
}

// NewTemplate returns a template response. The scope is copied.
func NewTemplate(file string, scope map[string]any) *Template {
	return internal.NewTemplate(file, scope)
}

// NewPayload returns a JSON response.
func NewPayload(v any) *Payload {
	return internal.NewPayload(v)
}

// NewOpaque returns a component response.
func NewOpaque(c Component) *Opaque {
	return internal.NewOpaque(c)
}

// AsResponse classifies an action result.
func AsResponse(v any) Response {
	return internal.AsResponse(v)
}

// ParseEmbedArgs builds EmbedParams from template function arguments.
func ParseEmbedArgs(args ...any) (EmbedParams, error) {
	return internal.ParseEmbedArgs(args...)
}

// EmbedParamsFromMap builds EmbedParams from a mapping.
func EmbedParamsFromMap(m map[string]any) (EmbedParams, error) {
	return internal.EmbedParamsFromMap(m)
}

// DefaultErrorHandler writes the status and message of an HTTPError, or a 500.
func DefaultErrorHandler(c Context, err error) error {
	return internal.DefaultErrorHandler(c, err)
}

// RouteExtractor adds the dispatched route name to log records.
func RouteExtractor() ContextExtractor {
	return internal.RouteExtractor()
}

// Context helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or type assertion fails.
//
// Example:
//
//	type tenantKey struct{}
//
//	tenant := anvil.ContextValue[string](c, tenantKey{})
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a route parameter converted to T.
// Returns the zero value if missing or not convertible.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a query parameter converted to T.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a query parameter converted to T, or defaultValue.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// Extractors

// NewExtractor returns an Extractor trying sources in order.
//
// Example:
//
//	tenant := anvil.NewExtractor(
//	    anvil.FromHeader("X-Tenant"),
//	    anvil.FromSession("", "tenant_id"),
//	)
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// FromCookie reads a plain cookie.
func FromCookie(name string) ExtractorSource {
	return internal.FromCookie(name)
}

// FromCookieSigned reads a signed cookie.
func FromCookieSigned(name string) ExtractorSource {
	return internal.FromCookieSigned(name)
}

// FromParam reads a route parameter.
func FromParam(name string) ExtractorSource {
	return internal.FromParam(name)
}

// FromForm reads a form field.
func FromForm(name string) ExtractorSource {
	return internal.FromForm(name)
}

// FromSession reads a value of the named session without creating it.
func FromSession(name, key string) ExtractorSource {
	return internal.FromSession(name, key)
}

// FromBearerToken reads a Bearer token from the Authorization header.
func FromBearerToken() ExtractorSource {
	return internal.FromBearerToken()
}

// HTTP errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// WithError sets the underlying cause of an HTTPError.
func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// WithRequestID sets the request ID of an HTTPError.
func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

// ErrBadRequest creates a 400 error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrUnauthorized creates a 401 error.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

// ErrForbidden creates a 403 error.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrMethodNotAllowed creates a 405 error.
func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrMethodNotAllowed(message, opts...)
}

// ErrInternal creates a 500 error.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Dispatch errors for checking return values.
var (
	ErrControllerNotFound  = internal.ErrControllerNotFound
	ErrActionNotFound      = internal.ErrActionNotFound
	ErrUnknownProp         = internal.ErrUnknownProp
	ErrPropType            = internal.ErrPropType
	ErrBadEmbedParams      = internal.ErrBadEmbedParams
	ErrEmbedDepthExceeded  = internal.ErrEmbedDepthExceeded
	ErrEmbedPanic          = internal.ErrEmbedPanic
	ErrViewsNotConfigured  = internal.ErrViewsNotConfigured
	ErrRoutesNotConfigured = internal.ErrRoutesNotConfigured
	ErrCSRF                = internal.ErrCSRF
	ErrBasicAuth           = internal.ErrBasicAuth
	ErrBadHeaderLine       = internal.ErrBadHeaderLine
)

// Cookie options

// WithCookieSecret sets the secret for signing. Must be at least 32 bytes.
func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// WithCookieHTTPOnly sets the HttpOnly flag.
func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Cookie errors for checking return values.
var (
	ErrCookieNotFound = cookie.ErrNotFound
	ErrCookieNoSecret = cookie.ErrNoSecret
	ErrCookieBadSig   = cookie.ErrBadSig
)

// Session options

// WithSession enables named server-side sessions.
// Sessions are loaded lazily and saved automatically before the response is written.
//
// Example:
//
//	anvil.New(
//	    anvil.WithSession(session.NewRedisStore(client, "sess"),
//	        anvil.WithSessionTTL(24*time.Hour),
//	    ),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithSessionCookieName sets the base session cookie name.
// Defaults to "__sid".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionTTL sets the session lifetime.
// Defaults to 30 days.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return internal.WithSessionTTL(ttl)
}

// Session errors for checking return values.
var (
	ErrSessionNotConfigured = session.ErrNotConfigured
	ErrSessionNotFound      = session.ErrNotFound
	ErrSessionExpired       = session.ErrExpired
)

// SessionValue is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
//
// Example:
//
//	theme, err := anvil.SessionValue[string](sess, "theme")
func SessionValue[T any](sess *Session, key string) (T, error) {
	return session.Value[T](sess, key)
}

// SessionValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
//
// Example:
//
//	theme := anvil.SessionValueOr(sess, "theme", "light")
func SessionValueOr[T any](sess *Session, key string, defaultVal T) T {
	return session.ValueOr(sess, key, defaultVal)
}
