package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/api/handler"
	"github.com/amjey/staff-tracker/internal/api/middleware"
	"github.com/amjey/staff-tracker/internal/service"
)

// maxBodyBytes 略大于名册导入文件上限（5MB），留出 multipart 头部余量
const maxBodyBytes = 6 << 20

// Setup 初始化并返回 Gin 路由引擎
// limiter 为登录接口的限流计数器，Redis 不可用时传入进程内实现
func Setup(cfg *config.Config, h *handler.Handler, authSvc service.AuthService, limiter middleware.Limiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(limiter, cfg.Auth.LoginLimit, cfg.Auth.LoginWindow), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(authSvc))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/session", h.Auth.Session)

			authorized.GET("/dashboard/summary", h.Dashboard.Summary)
			authorized.GET("/leaderboard", h.Dashboard.Leaderboard)
			authorized.POST("/cache/refresh", h.Dashboard.Refresh)

			// 名册模块
			staff := authorized.Group("/staff")
			{
				staff.GET("", h.Staff.List)
				staff.POST("", h.Staff.Create)
				staff.POST("/import", h.Staff.Import)
				staff.GET("/:sn", h.Staff.Get)
				staff.PUT("/:sn", h.Staff.Update)
				staff.DELETE("/:sn", h.Staff.Delete)
			}

			// 活动日志模块
			events := authorized.Group("/events")
			{
				events.GET("", h.Event.List)
				events.POST("", h.Event.Create)
				events.GET("/groups", h.Event.Groups)
				events.GET("/attendees", h.Event.Attendees)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/roster", h.Export.Roster)
				export.GET("/leaderboard", h.Export.Leaderboard)
				export.GET("/events.ics", h.Export.Calendar)
			}
		}
	}

	return r
}
