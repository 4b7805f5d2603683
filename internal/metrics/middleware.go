package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware returns a middleware that records every request.
// Unmatched routes are grouped under "unmatched" to bound label cardinality.
//
// GinMiddleware 返回记录每个请求的中间件。
// 未匹配的路由统一记为"unmatched"，以限制标签基数。
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
