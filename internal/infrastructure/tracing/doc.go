/*
Package tracing correlates log output across one request.

# Overview

Every request gets an id: taken from the X-Request-ID header when the GUI
sends one, generated otherwise (prefixed ULIDs from shared/id). The id rides
on the request context, is echoed back in the response header, and appears
in the access-log line the middleware writes when the request completes.
Handlers pull the id from the context when they need to tie their own
entries to the originating call.

# Usage

	// HTTP middleware
	router.Use(tracing.Middleware(logger))

	// Inside a handler or service
	if rid := tracing.FromContext(ctx); rid != "" {
		log.Info("section read", zap.String("request_id", rid.String()))
	}

# Log levels

The access line is written at Info for successes, Warn for 4xx, and Error
for 5xx, so failures surface without raising verbosity.
*/
package tracing
