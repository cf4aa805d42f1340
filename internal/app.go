package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/csrf"
	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/origin"
	"github.com/dmitrymomot/anvil/pkg/route"
	"github.com/dmitrymomot/anvil/pkg/view"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Application defaults.
const (
	defaultEnv           = "development"
	defaultLayout        = "main"
	defaultMaxEmbedDepth = 16
)

// App maps requests to controller actions through a named route table.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router                  chi.Router
	views                   view.Factory
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	routes                  *route.Table
	controllers             map[string]ControllerFactory
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	csrf                    *csrf.Manager
	origin                  *origin.Checker
	sessionManager          *SessionManager
	scopeDefaults           map[string]any
	env                     string
	defaultLayout           string
	cookieOptions           []cookie.Option
	csrfOptions             []csrf.Option
	trustedOrigins          []string
	middlewares             []Middleware
	staticRoutes            []staticRoute
	buildTimestamp          int64
	maxEmbedDepth           int
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	app := anvil.New(
//	    anvil.WithRoutes(routes),
//	    anvil.WithViews(view.NewSet(templates)),
//	    anvil.WithController("user", func() anvil.Controller { return &UserController{} }),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		controllers:   make(map[string]ControllerFactory),
		env:           defaultEnv,
		defaultLayout: defaultLayout,
		maxEmbedDepth: defaultMaxEmbedDepth,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.buildTimestamp == 0 {
		a.buildTimestamp = time.Now().Unix()
	}
	a.cookieManager = cookie.New(a.cookieOptions...)
	a.csrf = csrf.New(a.cookieManager, a.csrfOptions...)
	a.origin = origin.New(a.trustedOrigins...)
	if a.sessionManager != nil {
		a.sessionManager.setCookies(a.cookieManager)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Routes returns the route table, or nil.
func (a *App) Routes() *route.Table {
	return a.routes
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// URL builds the path of a named route.
func (a *App) URL(name string, params route.Params, query ...route.QueryParam) (string, error) {
	if a.routes == nil {
		return "", ErrRoutesNotConfigured
	}
	return a.routes.Build(name, params, query)
}

// NewContext creates a request context outside of routing, for tests and
// custom handlers mounted next to the app.
func (a *App) NewContext(w http.ResponseWriter, r *http.Request) Context {
	return contextFor(w, r, a)
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080", anvil.Logger(log), anvil.ShutdownHook(redis.Shutdown(client)))
func (a *App) Run(addr string, opts ...RunOption) error {
	s := newServer(a, a.logger)
	for _, opt := range opts {
		opt(s)
	}
	if addr != "" {
		s.address = addr
	}
	return s.run()
}

// setupRoutes mounts middleware, static files and every route of the table.
func (a *App) setupRoutes() {
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.routes == nil {
		return
	}
	for _, name := range a.routes.Names() {
		rt, _ := a.routes.Lookup(name)
		h := a.wrapHandler(a.dispatch(rt))
		if len(rt.Methods) == 0 {
			a.router.Handle(rt.Path, h)
			continue
		}
		for _, m := range rt.Methods {
			a.router.Method(m, rt.Path, h)
		}
	}
}

// dispatch returns the handler running the controller action of a route.
// Parameters are the route defaults overlaid by non-empty URL values;
// "controller" and "action" select what runs.
func (a *App) dispatch(rt route.Route) HandlerFunc {
	return func(c Context) error {
		rc := unwrapContext(c)
		rc.routeName = rt.Name
		rc.params = routeParams(rt, rc.request)

		start := time.Now()
		controller, action := rc.params["controller"], rc.params["action"]
		err := rc.invoke(controller, action, nil, nil)
		rc.diag.Record(EventDispatch, controller+"/"+action, start, 0, err)
		return err
	}
}

func routeParams(rt route.Route, r *http.Request) route.Params {
	params := make(route.Params, len(rt.Defaults))
	for k, v := range rt.Defaults {
		params[k] = v
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if v := rctx.URLParams.Values[i]; v != "" && k != "*" {
				params[k] = v
			}
		}
	}
	return params
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := contextFor(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
		a.finish(c)
	}
}

// adaptMiddleware converts an anvil Middleware to chi middleware.
// The request context travels with the request, so handlers down the
// chain share it.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextFunc := func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			}
			c := contextFor(w, r, a)
			if err := mw(nextFunc)(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}

// finish flushes sessions when nothing was written and logs diagnostics.
func (a *App) finish(c *requestContext) {
	if c.sessionHook && !c.responseWriter.Written() {
		c.flushSessions()
	}
	c.LogDebug("request dispatched", slog.Any("diagnostics", c.diag))
}

// handleError handles errors from handlers using the configured error handler.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("error after response was written", slog.Any("error", err))
		return
	}
	h := a.errorHandler
	if h == nil {
		h = DefaultErrorHandler
	}
	if herr := h(c, err); herr != nil {
		c.LogError("error handler failed", slog.Any("error", herr), slog.Any("cause", err))
	}
}

// DefaultErrorHandler writes the status and message of an HTTPError, or a
// 500 for anything else. Embed failures are always 500.
func DefaultErrorHandler(c Context, err error) error {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var embedErr *EmbedError
	if httpErr := AsHTTPError(err); httpErr != nil && !errors.As(err, &embedErr) {
		code = httpErr.Code
		msg = httpErr.Message
	}
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Any("error", err))
	}

	http.Error(c.Response(), msg, code)
	return nil
}

func unwrapContext(c Context) *requestContext {
	if rc, ok := c.(*requestContext); ok {
		return rc
	}
	return c.Value(ctxKey{}).(*requestContext)
}

// RouteExtractor adds the dispatched route name to log records.
func RouteExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if c, ok := ctx.Value(ctxKey{}).(*requestContext); ok && c.routeName != "" {
			return slog.String("route", c.routeName), true
		}
		return slog.Attr{}, false
	}
}
