package server

import (
	"strings"

	"github.com/carlosascari/opencollective-api/pkg/telemetry/correlation"
	"github.com/gin-gonic/gin"
)

const (
	headerRequestID = "X-Request-ID"
	headerTraceID   = "X-Trace-ID"
	headerSpanID    = "X-Span-ID"
)

// RequestID propagates the caller's request id or mints one, exposing
// it to handlers via the request context and on the response. When the
// upstream proxy forwards trace identifiers, the remote span is seeded
// so provider spans attach to the caller's trace.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if id := strings.TrimSpace(c.GetHeader(headerRequestID)); id != "" {
			ctx = correlation.ContextWithCorrelationID(ctx, id)
		}
		ctx, id := correlation.EnsureCorrelationID(ctx)
		ctx = correlation.ContextWithRemoteSpan(ctx, c.GetHeader(headerTraceID), c.GetHeader(headerSpanID))
		c.Writer.Header().Set(headerRequestID, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
