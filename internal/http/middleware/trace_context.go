package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
)

// AttachTraceContext gives every request a request id and a trace id. An
// active otel span wins over the inbound X-Trace-Id header so log lines and
// exported spans share one id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)

		reqID := headerOr(c, HeaderRequestID, uuid.NewString)
		traceID := ""
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else {
			traceID = headerOr(c, HeaderTraceID, uuid.NewString)
		}
		span.SetAttributes(attribute.String("http.request_id", reqID))

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		c.Writer.Header().Set(HeaderTraceID, traceID)
		c.Writer.Header().Set(HeaderRequestID, reqID)
		c.Next()
	}
}

func headerOr(c *gin.Context, name string, gen func() string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" && len(v) <= 128 {
		return v
	}
	return gen()
}
