package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

// RequestLogger writes one line per request after the handler chain. Status
// picks the level; routes in quiet only log at debug on success.
func RequestLogger(log *logger.Logger, quiet ...string) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	quietRoutes := make(map[string]struct{}, len(quiet))
	for _, q := range quiet {
		quietRoutes[q] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if userID := ctxutil.UserID(ctx); userID != uuid.Nil {
			fields = append(fields, "user_id", userID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		_, isQuiet := quietRoutes[route]
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case isQuiet:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
