package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/handlers"
	"github.com/monocle-dev/planboard/internal/middleware"
)

// NewRouter mounts the API under /api. allowOrigin decides CORS and websocket
// origins alike.
func NewRouter(h *handlers.Handler, allowOrigin func(origin string) bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  allowOrigin,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middleware.AuthMiddleware(h.Issuer, h.Store)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.GET("/me", requireAuth, h.Me)
			auth.PUT("/password", requireAuth, h.ChangePassword)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("", h.ListUsers)
			users.PUT("/password", h.ChangePassword)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.GET("", h.ListProjects)
			projects.POST("", h.CreateProject)
			projects.GET("/:id", h.GetProject)
			projects.PUT("/:id", h.UpdateProject)
			projects.DELETE("/:id", h.DeleteProject)

			projects.GET("/:id/timeline", h.GetProjectTimeline)
			projects.GET("/:id/users", h.GetProjectUsers)
			projects.POST("/:id/users", h.AddProjectUser)
			projects.GET("/:id/tasks", h.ListProjectTasks)
			projects.POST("/:id/tasks", h.CreateProjectTask)
			projects.GET("/:id/ws", h.ProjectWebSocket)

			projects.GET("/:id/notifications", h.ListNotificationRules)
			projects.POST("/:id/notifications", h.CreateNotificationRule)
			projects.DELETE("/:id/notifications/:ruleId", h.DeleteNotificationRule)
		}

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.GET("", h.ListTasks)
			tasks.POST("", h.CreateTask)
			tasks.GET("/:id", h.GetTask)
			tasks.PUT("/:id", h.UpdateTask)
			tasks.DELETE("/:id", h.DeleteTask)
		}

		dashboard := api.Group("/dashboard", requireAuth)
		{
			dashboard.GET("/stats", h.GetDashboardStats)
			dashboard.GET("/activity", h.GetDashboardActivity)
		}
	}

	return r
}
