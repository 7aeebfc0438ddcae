package tracing

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/shared/id"
)

// Middleware tags each request with an id and writes one access-log line
// when the request completes. The GUI may supply X-Request-ID to correlate
// its own console output with backend entries; absent that, an id is
// generated.
func Middleware(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := id.RequestID(c.GetHeader("X-Request-ID"))
		if rid == "" {
			rid = id.NewRequestID()
		}

		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), rid))
		c.Header("X-Request-ID", rid.String())

		if c.IsWebsocket() {
			// The hub logs connect and disconnect itself; one access line
			// spanning the whole connection would only mislead.
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", rid.String()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
