package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cursolab/cursolab-backend/internal/handlers"
)

type RouterConfig struct {
	CORSOrigins []string

	CourseHandler  *handlers.CourseHandler
	AssetHandler   *handlers.AssetHandler
	ArchiveHandler *handlers.ArchiveHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Cursolab-Warning"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/courses", cfg.CourseHandler.Create)
		api.POST("/courses/:id/open", cfg.CourseHandler.Open)
		api.GET("/courses/:id", cfg.CourseHandler.Get)
		api.POST("/courses/:id/close", cfg.CourseHandler.Close)
		api.PUT("/courses/:id/settings", cfg.CourseHandler.UpdateSettings)

		api.POST("/courses/:id/modules", cfg.CourseHandler.AddModule)
		api.PUT("/courses/:id/modules/:moduleId", cfg.CourseHandler.UpdateModule)
		api.DELETE("/courses/:id/modules/:moduleId", cfg.CourseHandler.RemoveModule)
		api.POST("/courses/:id/modules/:moduleId/move", cfg.CourseHandler.MoveModule)
		api.POST("/courses/:id/modules/generate", cfg.CourseHandler.GenerateModules)

		api.POST("/courses/:id/media", cfg.AssetHandler.UploadMedia)
		api.DELETE("/courses/:id/media/:mediaId", cfg.AssetHandler.RemoveMedia)
		api.GET("/courses/:id/media/:mediaId/content", cfg.AssetHandler.ServeMediaContent)
		api.POST("/courses/:id/mascot/:tag", cfg.AssetHandler.UploadPose)
		api.GET("/courses/:id/mascot/:tag/content", cfg.AssetHandler.ServePoseContent)
		api.POST("/courses/:id/mascot", cfg.AssetHandler.GenerateMascot)

		api.GET("/courses/:id/export", cfg.ArchiveHandler.Export)
		api.POST("/import", cfg.ArchiveHandler.Import)
	}

	return router
}
