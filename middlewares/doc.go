// Package middlewares provides HTTP middleware for anvil applications.
//
// Middlewares wrap the dispatch of every route and share the request
// context with the controllers they wrap.
//
// # Request ID
//
// RequestID assigns an ID to each request for tracing and debugging.
// A well-formed incoming X-Request-ID or X-Correlation-ID is reused;
// otherwise a UUID is generated.
//
//	app := anvil.New(
//	    anvil.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// Use RequestIDExtractor() with WithLogger for automatic request_id in all logs,
// embeds included:
//
//	app := anvil.New(
//	    anvil.WithLogger("web", cfg.Logger, middlewares.RequestIDExtractor()),
//	    anvil.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// # Recover
//
// Recover catches panics of the dispatched controller and converts them to
// *PanicError. Embeds recover their own panics, so a broken widget does not
// reach this middleware.
//
//	app := anvil.New(
//	    anvil.WithMiddleware(
//	        middlewares.Recover(),
//	    ),
//	    anvil.WithErrorHandler(func(c anvil.Context, err error) error {
//	        if pe, ok := middlewares.AsPanicError(err); ok {
//	            c.LogError("panic", "route", pe.Route, "value", pe.Value)
//	        }
//	        return anvil.DefaultErrorHandler(c, err)
//	    }),
//	)
//
// # Recommended Middleware Order
//
//	anvil.WithMiddleware(
//	    middlewares.RequestID(), // First: assign ID for all subsequent logging
//	    middlewares.Recover(),   // Second: catch panics from controllers
//	)
package middlewares
