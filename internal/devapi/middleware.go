package devapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader is the header carrying the request correlation ID.
//
// RequestIDHeader 是携带请求关联 ID 的头部名称。
const RequestIDHeader = "X-Request-ID"

// RequestID echoes the client's request ID, generating a UUID when the
// request has none. The ID is also stored in the gin context.
//
// Returns:
//   - gin.HandlerFunc: Middleware that sets the request ID
//
// RequestID 回显客户端的请求 ID，请求中没有时生成一个 UUID。该 ID 也保存在 gin 上下文中。
//
// 返回:
//   - gin.HandlerFunc: 设置请求 ID 的中间件
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request once it has been handled.
//
// Parameters:
//   - logger: Destination of the request log entries
//
// Returns:
//   - gin.HandlerFunc: Middleware that logs requests
//
// RequestLogger 在每个请求处理完成后记录日志。
//
// 参数:
//   - logger: 请求日志的输出目标
//
// 返回:
//   - gin.HandlerFunc: 记录请求的中间件
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDHeader)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Info("request", fields...)
	}
}
