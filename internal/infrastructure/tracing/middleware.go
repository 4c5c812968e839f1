package tracing

import (
	"github.com/gin-gonic/gin"

	"github.com/danielricci/mead-framework/internal/shared/id"
)

// Middleware tags every inspector request with a trace id. An incoming
// X-Trace-ID header is honored so callers can correlate across hops;
// otherwise a fresh id is generated. The id is placed on the request
// context and echoed on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := id.TraceID(c.GetHeader(Header))
		if traceID == "" {
			traceID = NewTraceID()
		}

		ctx := WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(Header, traceID.String())

		c.Next()
	}
}
