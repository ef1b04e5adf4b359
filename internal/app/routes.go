package app

import (
	"fmt"
	"net/http"

	"github.com/JCROMO11/task-manager-api/internal/auth"
	"github.com/JCROMO11/task-manager-api/internal/config"
	"github.com/JCROMO11/task-manager-api/internal/handlers"
	"github.com/JCROMO11/task-manager-api/internal/repo"
	"github.com/JCROMO11/task-manager-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Deps are the storage backends the routes are built on. Redis may be nil.
type Deps struct {
	Users repo.UserRepo
	Tasks repo.TaskRepo
	Redis redis.Cmdable
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log zerolog.Logger, d Deps) error {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}
	var limiter *auth.AttemptLimiter
	if d.Redis != nil {
		limiter = auth.NewAttemptLimiter(d.Redis, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout.Duration())
	}

	userSvc := service.NewUserService(d.Users, hasher)
	taskSvc := service.NewTaskService(d.Tasks)
	userHandler := handlers.NewUserHandler(userSvc, limiter, log.With().Str("handler", "users").Logger())
	taskHandler := handlers.NewTaskHandler(taskSvc, userSvc, log.With().Str("handler", "tasks").Logger())

	api := r.Group("/api/v1")
	registerUserRoutes(api, userHandler)
	registerTaskRoutes(api, taskHandler)
	return nil
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Bienvenido/a a Task Manager API",
			"version": cfg.App.Version,
			"docs":    "/swagger/index.html",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler) {
	api.POST("/users", h.Create)
	api.GET("/users", h.List)
	api.GET("/users/:id", h.Get)
	api.POST("/auth/login", h.Login)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/users/:id/tasks", h.Create)
	api.GET("/users/:id/tasks", h.ListByUser)
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.GetByID)
	api.PUT("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}
