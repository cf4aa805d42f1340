package internal

// HandlerFunc is the signature for plain route handlers.
// Returning a non-nil error triggers the error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware runs around the whole controller dispatch, so it sees
// the error returned by before, the action, or rendering.
//
// Example:
//
//	func Auth(next anvil.HandlerFunc) anvil.HandlerFunc {
//	    return func(c anvil.Context) error {
//	        if !isAuthenticated(c) {
//	            return c.Redirect(http.StatusFound, "/login")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
