package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID 请求追踪中间件
// 优先沿用调用方传入的 X-Request-ID（必须是合法 UUID，防止日志注入），
// 否则生成新 UUID；注入 gin.Context 供日志中间件使用，并回写响应头。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// requestIDFrom 从上下文取出请求 ID，不存在时返回空串
func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
