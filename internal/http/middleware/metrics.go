package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/filekit-workers/internal/metrics"
)

// Metrics counts requests by route template so ids do not explode label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.IncHTTPRequest(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status()))
	}
}
