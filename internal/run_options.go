package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server started by App.Run.
type RunOption func(*server)

// Address sets the listen address used when Run gets an empty one.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return func(s *server) {
		if addr != "" {
			s.address = addr
		}
	}
}

// Logger sets the server logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(s *server) {
		if l != nil {
			s.logger = l
		}
	}
}

// ShutdownTimeout bounds the graceful shutdown, hooks included.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(s *server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// ShutdownHook registers a cleanup function to run after the server stops.
// Hooks run in reverse registration order.
//
// Example:
//
//	anvil.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(s *server) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// WithContext sets the base context. Cancelling it shuts the server down,
// and request contexts derive from it.
func WithContext(ctx context.Context) RunOption {
	return func(s *server) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}
