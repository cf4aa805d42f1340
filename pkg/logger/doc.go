// Package logger builds slog loggers with context extraction and optional
// Sentry fan-out.
//
// A [ContextExtractor] pulls a request-scoped attribute (request ID, route
// name, embed depth) out of the context on every log call:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(ctxKey{}).(string)
//		return slog.String("request_id", id), ok
//	}
//	log := logger.New(logger.Config{Level: "debug", Format: "text"}, requestID)
//
// With a Sentry DSN configured, error records create Sentry issues and
// warnings are kept as breadcrumbs-style logs. Without a DSN, or when the
// SDK fails to initialize, the logger writes to stdout only.
package logger
