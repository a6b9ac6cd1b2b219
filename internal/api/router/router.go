package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jayelcee/InternHQ-sub003/config"
	"github.com/jayelcee/InternHQ-sub003/internal/api/handler"
	"github.com/jayelcee/InternHQ-sub003/internal/api/middleware"
	"github.com/jayelcee/InternHQ-sub003/internal/model"
	"github.com/jayelcee/InternHQ-sub003/pkg/jwt"
	"github.com/jayelcee/InternHQ-sub003/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 字典（无需认证，供注册表单使用）
		v1.GET("/schools", h.Lookup.ListSchools)
		v1.GET("/departments", h.Lookup.ListDepartments)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 打卡模块
			timeLogs := authorized.Group("/time-logs")
			{
				timeLogs.POST("/clock-in", h.TimeLog.ClockIn)
				timeLogs.POST("/clock-out", h.TimeLog.ClockOut)
				timeLogs.GET("", h.TimeLog.List) // user_id 参数仅管理员可用（Service 层鉴权）
				timeLogs.GET("/today", h.TimeLog.ListToday)
			}

			// 工时修改申请模块
			editRequests := authorized.Group("/edit-requests")
			{
				editRequests.POST("", h.Edit.Submit)
				editRequests.GET("", h.Edit.List)
				editRequests.GET("/:id", h.Edit.Get)
			}

			// 工时统计模块
			stats := authorized.Group("/stats")
			{
				stats.GET("/me", h.Stats.GetMyStats)
				stats.GET("/me/eligibility", h.Stats.GetMyEligibility)
			}

			// 实习计划与结业模块
			authorized.GET("/programs/me", h.Completion.GetMyProgram)
			authorized.POST("/completion-requests", h.Completion.RequestCompletion)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/dtr", h.Export.ExportDTR)
				export.GET("/calendar", h.Export.ExportCalendar)
			}

			// ── 管理员路由 ──
			admin := authorized.Group("/admin", adminOnly)
			{
				users := admin.Group("/users")
				{
					users.GET("", h.User.List)
					users.GET("/:id", h.User.Get)
					users.PUT("/:id", h.User.Update)
					users.DELETE("/:id", h.User.Delete)
				}

				admin.GET("/stats/users/:id", h.Stats.GetUserStats)

				adminEdits := admin.Group("/edit-requests")
				{
					adminEdits.POST("/:id/approve", h.Edit.Approve)
					adminEdits.POST("/:id/reject", h.Edit.Reject)
					adminEdits.POST("/:id/revert", h.Edit.Revert)
					adminEdits.POST("/groups/:group_id/approve", h.Edit.ApproveGroup)
					adminEdits.POST("/groups/:group_id/reject", h.Edit.RejectGroup)
					adminEdits.POST("/groups/:group_id/revert", h.Edit.RevertGroup)
				}

				completions := admin.Group("/completion-requests")
				{
					completions.GET("", h.Completion.List)
					completions.POST("/:id/approve", h.Completion.Approve)
					completions.POST("/:id/reject", h.Completion.Reject)
				}

				admin.POST("/migrations/long-logs", h.Completion.MigrateLongLogs)
			}
		}
	}

	return r
}
