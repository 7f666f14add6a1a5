package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/memerator/internal/logger"
)

const (
	loggerKey       = "logger"
	requestIDHeader = "X-Request-ID"
)

// LoggerMiddleware attaches a request-scoped logger carrying request_id and
// logs one line when the request starts and one when it finishes.
// Parameters:
//   - log: base logger; nil falls back to the package default.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := requestIDFrom(c)

		ctx := c.Request.Context()
		if log != nil {
			ctx = log.WithContext(ctx)
		}
		ctx = logger.WithFields(ctx, logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(loggerKey, logger.FromContext(ctx))
		c.Header(requestIDHeader, requestID)

		logger.CtxDebug(ctx, "Request started: method=%s, path=%s, client_ip=%s",
			c.Request.Method, c.Request.URL.Path, c.ClientIP())

		c.Next()

		// Handlers may have added user_id or meme_id to the request context
		logCompletion(c.Request.Context(), c, time.Since(start))
	}
}

// requestIDFrom reuses a well-formed inbound request ID, otherwise mints one.
func requestIDFrom(c *gin.Context) string {
	if id := c.GetHeader(requestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

func logCompletion(ctx context.Context, c *gin.Context, latency time.Duration) {
	status := c.Writer.Status()
	target := c.Request.URL.Path
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}

	entry := logger.With(logger.Fields{
		logger.FieldStatus:     status,
		logger.FieldDurationMs: latency.Milliseconds(),
		logger.FieldSize:       c.Writer.Size(),
	})
	switch {
	case status >= 500:
		entry.Error(ctx, "%s %s failed", c.Request.Method, target)
	case status >= 400:
		entry.Warn(ctx, "%s %s rejected", c.Request.Method, target)
	default:
		entry.Info(ctx, "%s %s", c.Request.Method, target)
	}
}

// GetLogger returns the request-scoped logger.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.FromContext(c.Request.Context())
}
