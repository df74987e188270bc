package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/domain/models"
	"github.com/eggspire/monitor/internal/server/handlers"
	"github.com/eggspire/monitor/internal/server/middleware"
	authsvc "github.com/eggspire/monitor/internal/service/auth"
)

// Handlers bundles the HTTP adapters the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Eggs      *handlers.EggHandler
	Dashboard *handlers.DashboardHandler
	Reports   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, auth *authsvc.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("", middleware.RequireAuth(auth, logger))

	authed.GET("/auth/profile", h.Auth.Profile)
	authed.PUT("/auth/profile", h.Auth.UpdateProfile)
	authed.PUT("/auth/change-password", h.Auth.ChangePassword)
	authed.POST("/auth/register", middleware.RequireRole(models.RoleSuperAdmin), h.Auth.Register)

	users := authed.Group("/users", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	users.GET("", h.Users.List)
	users.GET("/:userId", h.Users.Get)
	users.PUT("/:userId", h.Users.Update)
	users.DELETE("/:userId", h.Users.Delete)

	eggs := authed.Group("/eggs")
	eggs.GET("", h.Eggs.List)
	eggs.GET("/recent", h.Eggs.Recent)
	eggs.GET("/statistics", h.Eggs.Statistics)
	eggs.GET("/daily-summary", h.Eggs.DailySummary)
	eggs.GET("/:scanId", h.Eggs.Get)

	dashboard := authed.Group("/dashboard")
	dashboard.GET("/summary", h.Dashboard.Summary)
	dashboard.GET("/weekly-stats", h.Dashboard.WeeklyStats)
	dashboard.GET("/system-health", h.Dashboard.SystemHealth)

	reports := authed.Group("/reports")
	reports.POST("/generate", h.Reports.Generate)
	reports.GET("/history", h.Reports.History)
	reports.GET("/download/:reportId", h.Reports.Download)
	reports.DELETE("/:reportId", h.Reports.Delete)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("client_ip", c.ClientIP()))
	}
}
