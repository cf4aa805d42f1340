package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/anvil/internal"
	"github.com/dmitrymomot/anvil/pkg/logger"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are checked in order for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// MaxRequestIDLength is the longest upstream request ID that is reused.
const MaxRequestIDLength = 128

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string   // empty disables the response header
	Headers        []string // upstream headers, in order
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders replaces the upstream headers.
// No headers means an ID is always generated.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Headers = headers }
}

// WithRequestIDGenerator replaces uuid.NewString.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Generator = gen }
}

// WithRequestIDResponseHeader sets the response header echoing the ID.
// An empty name disables it.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.ResponseHeader = header }
}

// RequestID assigns an ID to every dispatch. The ID lives in the request
// context, so embeds and the logger share it, and it is stamped on any
// *HTTPError the dispatch returns without one.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			id := cfg.upstream(c)
			if id == "" {
				id = cfg.Generator()
			}

			c.Set(requestIDKey{}, id)
			if cfg.ResponseHeader != "" {
				c.SetHeader(cfg.ResponseHeader, id)
			}

			err := next(c)
			if he := internal.AsHTTPError(err); he != nil && he.RequestID == "" {
				he.RequestID = id
			}
			return err
		}
	}
}

func (cfg RequestIDConfig) upstream(c internal.Context) string {
	for _, h := range cfg.Headers {
		if v := c.Header(h); validRequestID(v) {
			return v
		}
	}
	return ""
}

// validRequestID reports whether an upstream ID is short printable ASCII
// without spaces.
func validRequestID(v string) bool {
	if v == "" || len(v) > MaxRequestIDLength {
		return false
	}
	for i := range len(v) {
		if v[i] <= ' ' || v[i] > '~' {
			return false
		}
	}
	return true
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor adds "request_id" to log records of a dispatch.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, _ := ctx.Value(requestIDKey{}).(string)
		return slog.String("request_id", id), id != ""
	}
}
