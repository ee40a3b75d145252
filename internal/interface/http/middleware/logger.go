package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
	"github.com/xiebiao/playchat/pkg/logger"
	"github.com/xiebiao/playchat/pkg/response"
)

const (
	headerRequestID      = "X-Request-ID"
	slowRequestThreshold = 3 * time.Second
)

// RequestLogger 请求日志
// 1. 沿用上游传入的X-Request-ID，没有则生成
// 2. 请求ID写入Context，之后的slog.*Context日志自动带上request_id
// 3. 超过3秒的请求记为WARN
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, requestID)
		c.Header(headerRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"size", c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case latency > slowRequestThreshold:
			slog.WarnContext(ctx, "slow request", attrs...)
		case status >= 500:
			slog.ErrorContext(ctx, "request", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}

// Recovery panic转换为500响应
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		response.AbortWithError(c, apperrors.ErrInternal)
	})
}
