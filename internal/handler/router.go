package handler

import (
	"net/http"

	"github.com/adminsys/backoffice/internal/config"
	"github.com/adminsys/backoffice/internal/middleware"
	"github.com/adminsys/backoffice/internal/pkg/jwtauth"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Audit        *service.AuditService
	Logs         *service.LogQueryService
	Auth         *service.AuthService
	Users        *service.UserService
	Todos        *service.TodoService
	Notices      *service.NoticeService
	Tokens       *jwtauth.Manager
	LoginLimiter *service.KeyedLimiter
}

// NewRouter builds the gin engine. RequestLogger is installed first so it
// observes the final status of every request.
func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(middleware.RequestLogger(svc.Audit, cfg.Audit.SkipPaths))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.ErrorHandler(cfg.Server.IsRelease()))
	r.Use(middleware.ErrorObserver(svc.Audit))
	r.Use(middleware.MetricsMiddleware())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "backoffice"})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	auth := middleware.Auth(svc.Tokens)
	admin := middleware.RequireAdmin()

	authH := NewAuthHandler(svc.Auth)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", middleware.LoginRateLimit(svc.LoginLimiter), authH.Login)
		authGroup.POST("/logout", auth, authH.Logout)
		authGroup.GET("/me", auth, authH.Me)
	}

	userH := NewUserHandler(svc.Users)
	users := r.Group("/api/users", auth)
	{
		users.GET("", admin, userH.List)
		users.GET("/:id", userH.Get)
		users.PUT("/:id", userH.Update)
		users.DELETE("/:id", admin, userH.Delete)
	}

	todoH := NewTodoHandler(svc.Todos)
	todos := r.Group("/api/todos", auth)
	{
		todos.GET("", todoH.List)
		todos.POST("", todoH.Create)
		todos.PUT("/:id", todoH.Update)
		todos.PATCH("/:id/status", todoH.SetStatus)
		todos.DELETE("/:id", todoH.Delete)
	}

	noticeH := NewNoticeHandler(svc.Notices)
	notices := r.Group("/api/notices")
	{
		notices.GET("", noticeH.List)
		notices.GET("/:id", noticeH.Get)
		notices.POST("", auth, admin, noticeH.Create)
		notices.PUT("/:id", auth, admin, noticeH.Update)
		notices.DELETE("/:id", auth, admin, noticeH.Delete)
	}

	logH := NewAuditHandler(svc.Logs, cfg.Audit.RetentionDays)
	logs := r.Group("/api/logs", auth, admin)
	{
		logs.GET("", logH.List)
		logs.GET("/stats/overview", logH.Overview)
		logs.DELETE("/cleanup", logH.Cleanup)
		logs.GET("/:id", logH.Get)
	}

	return r
}
