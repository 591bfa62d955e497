// Package logger provides the gateway's structured logging: slog factories
// with per-component attribution, context-based attribute extraction and an
// optional Sentry destination.
//
// Context extractors pull request-scoped values (request id, account name)
// out of a context.Context on every log call:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(ctxkey{}).(string); ok && id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//
//	log := logger.New("dispatcher", []logger.ContextExtractor{requestID})
//	log.InfoContext(ctx, "request served", slog.Int("status", 200))
//
// NewWithSentry adds error reporting: records at or above the configured
// level are forwarded to Sentry alongside stdout. With an empty DSN it
// silently degrades to stdout-only, so development and production share one
// code path.
package logger
