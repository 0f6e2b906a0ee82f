package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"raven-alert/backend/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// 声明了 Content-Length 的请求超限直接拒绝；
// 流式请求体由 MaxBytesReader 在读取过程中截断（.ics 导入与 SOS 录音上传共用此上限）。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() {
			return
		}
		for _, err := range c.Errors {
			if err.Err != nil && err.Err.Error() == "http: request body too large" {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
