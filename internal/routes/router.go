// Package routesはroutingを行います。
package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/identity"
	"taskboard/backend/internal/logger"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/services"
)

// Deps はルーターが組み立てに使う依存関係です。
type Deps struct {
	HTTP   config.HTTPConfig
	Logger zerolog.Logger
	Store  repositories.Store
	Tokens *services.JWTService
	// Identity が nil ならストア上のローカルプロバイダを使います。
	Identity identity.Provider
	// UserCache は nil でも構いません。
	UserCache services.UserCache
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(d.Logger))

	// CORS対策
	corsConfig := cors.DefaultConfig()
	if len(d.HTTP.AllowedOrigins) == 1 && d.HTTP.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.HTTP.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	provider := d.Identity
	if provider == nil {
		provider = identity.NewLocalProvider(d.Store.Users())
	}

	// サービス
	userService := services.NewUserService(d.Store.Users(), provider, d.Tokens, d.UserCache)
	projectService := services.NewProjectService(d.Store.Projects())
	taskService := services.NewTaskService(projectService, d.Store.Tasks())

	// ハンドラー
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	basePath := d.HTTP.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	api := r.Group(basePath)

	// ルーティング
	api.GET("/health", handlers.HealthHandler(d.Store))
	api.POST("/auth/signup", userHandler.SignUpHandler)
	api.POST("/auth/signin", userHandler.SignInHandler)

	authorized := api.Group("/")
	authorized.Use(AuthMiddleware(d.Tokens))
	{
		authorized.GET("/auth/me", userHandler.MeHandler)

		authorized.GET("/projects", projectHandler.GetProjectsHandler)
		authorized.POST("/projects", projectHandler.CreateProjectHandler)
		authorized.GET("/projects/:projectId", projectHandler.GetProjectByIDHandler)
		authorized.PUT("/projects/:projectId", projectHandler.UpdateProjectHandler)
		authorized.DELETE("/projects/:projectId", projectHandler.DeleteProjectHandler)

		authorized.GET("/projects/:projectId/tasks", taskHandler.GetTasksHandler)
		authorized.POST("/projects/:projectId/tasks", taskHandler.CreateTaskHandler)
		authorized.GET("/projects/:projectId/tasks/:taskId", taskHandler.GetTaskByIDHandler)
		authorized.PUT("/projects/:projectId/tasks/:taskId", taskHandler.UpdateTaskHandler)
		authorized.DELETE("/projects/:projectId/tasks/:taskId", taskHandler.DeleteTaskHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Response{Message: "Route not found"})
	})

	return r
}
