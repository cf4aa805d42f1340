package internal

import (
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/dmitrymomot/anvil/pkg/cookie"
	"github.com/dmitrymomot/anvil/pkg/csrf"
	"github.com/dmitrymomot/anvil/pkg/logger"
	"github.com/dmitrymomot/anvil/pkg/route"
	"github.com/dmitrymomot/anvil/pkg/session"
	"github.com/dmitrymomot/anvil/pkg/view"
)

// Option configures the application.
type Option func(*App)

// WithConfig applies an environment-driven Config. Explicit options given
// after it win.
//
// Example:
//
//	cfg, err := anvil.LoadConfig()
//	app := anvil.New(anvil.WithConfig(cfg), anvil.WithRoutes(routes))
func WithConfig(cfg Config) Option {
	return func(a *App) {
		if cfg.Env != "" {
			a.env = cfg.Env
		}
		if cfg.DefaultLayout != "" {
			a.defaultLayout = cfg.DefaultLayout
		}
		if cfg.MaxEmbedDepth > 0 {
			a.maxEmbedDepth = cfg.MaxEmbedDepth
		}
		a.buildTimestamp = cfg.BuildTimestamp
		a.trustedOrigins = append(a.trustedOrigins, cfg.TrustedOrigins...)
		a.cookieOptions = append(a.cookieOptions,
			cookie.WithSecret(cfg.CookieSecret),
			cookie.WithSecure(cfg.IsProduction()),
		)
	}
}

// WithRoutes sets the route table. Every route is mounted on the router
// and used by URL building.
func WithRoutes(t *route.Table) Option {
	return func(a *App) {
		a.routes = t
	}
}

// WithController registers a controller factory under name.
// Routes select it with the "controller" parameter, embeds by name.
func WithController(name string, factory ControllerFactory) Option {
	return func(a *App) {
		if name != "" && factory != nil {
			a.controllers[name] = factory
		}
	}
}

// WithViews sets the templating collaborator.
//
// Example:
//
//	anvil.WithViews(view.NewSet(os.DirFS("templates")))
func WithViews(f view.Factory) Option {
	return func(a *App) {
		a.views = f
	}
}

// WithScopeDefaults sets template variables every render starts with.
// Template scope and reserved keys override them.
func WithScopeDefaults(vars map[string]any) Option {
	return func(a *App) {
		if a.scopeDefaults == nil {
			a.scopeDefaults = make(map[string]any, len(vars))
		}
		maps.Copy(a.scopeDefaults, vars)
	}
}

// WithEnv sets the environment name exposed to templates.
func WithEnv(env string) Option {
	return func(a *App) {
		if env != "" {
			a.env = env
		}
	}
}

// WithBuildTimestamp sets the build timestamp of PJAX version tags.
// Defaults to the app start time.
func WithBuildTimestamp(ts int64) Option {
	return func(a *App) {
		a.buildTimestamp = ts
	}
}

// WithDefaultLayout sets the layout used by controllers that set none.
func WithDefaultLayout(layout string) Option {
	return func(a *App) {
		if layout != "" {
			a.defaultLayout = layout
		}
	}
}

// WithMaxEmbedDepth limits embed nesting. Defaults to 16.
func WithMaxEmbedDepth(depth int) Option {
	return func(a *App) {
		if depth > 0 {
			a.maxEmbedDepth = depth
		}
	}
}

// WithTrustedOrigins adds hosts accepted by the origin check besides the
// request host. "*.example.com" matches direct subdomains.
func WithTrustedOrigins(hosts ...string) Option {
	return func(a *App) {
		a.trustedOrigins = append(a.trustedOrigins, hosts...)
	}
}

// WithCookieOptions configures the cookie manager.
//
// Example:
//
//	anvil.New(
//	    anvil.WithCookieOptions(
//	        cookie.WithSecret(os.Getenv("COOKIE_SECRET")),
//	        cookie.WithSecure(true),
//	    ),
//	)
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieOptions = append(a.cookieOptions, opts...)
	}
}

// WithCSRFOptions configures the CSRF token manager.
func WithCSRFOptions(opts ...csrf.Option) Option {
	return func(a *App) {
		a.csrfOptions = append(a.csrfOptions, opts...)
	}
}

// WithSession enables named server-side sessions.
//
// Example:
//
//	anvil.WithSession(session.NewRedisStore(client, "sess"), anvil.WithSessionTTL(24*time.Hour))
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		if store != nil {
			a.sessionManager = NewSessionManager(store, opts...)
		}
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The route name of dispatched requests is always extracted.
//
// Example:
//
//	anvil.New(
//	    anvil.WithLogger("web", cfg.Logger, middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, cfg logger.Config, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		extractors = append(extractors, RouteExtractor())
		a.logger = logger.New(cfg, extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
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
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
//
// Example:
//
//	anvil.WithErrorHandler(func(c anvil.Context, err error) error {
//	    return c.JSON(http.StatusInternalServerError, map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}
