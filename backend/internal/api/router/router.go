package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"raven-alert/backend/config"
	"raven-alert/backend/internal/api/handler"
	"raven-alert/backend/internal/api/middleware"
	"raven-alert/backend/pkg/jwt"
	"raven-alert/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(8 << 20)) // ICS 上传 ≤5MB，留余量

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/me", h.Auth.UpdateMe)

			// 紧急联系人模块
			contacts := authorized.Group("/contacts")
			{
				contacts.GET("", h.Contact.ListContacts)
				contacts.POST("", h.Contact.CreateContact)
				contacts.PUT("/:id", h.Contact.UpdateContact)
				contacts.DELETE("/:id", h.Contact.DeleteContact)
			}

			// 预约报警模块
			scheduled := authorized.Group("/scheduled-alerts")
			{
				scheduled.GET("", h.ScheduledAlert.ListScheduledAlerts)
				scheduled.POST("", h.ScheduledAlert.CreateScheduledAlert)
				scheduled.POST("/:id/cancel", h.ScheduledAlert.CancelScheduledAlert)
				scheduled.POST("/import", h.ScheduledAlert.ImportScheduledAlerts)
			}

			// 紧急广播模块
			emergency := authorized.Group("/emergency")
			{
				emergency.POST("/sos", h.Emergency.TriggerSOS)
				emergency.GET("/alerts", h.Emergency.ListHistory)
				emergency.GET("/recordings", h.Emergency.ListRecordings)
				emergency.POST("/sweep", middleware.RoleAuth("admin"), h.Emergency.RunSweep)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/alert-history", h.Export.ExportHistory)
			}
		}
	}

	return r
}
