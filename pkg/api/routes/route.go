package routes

import (
	"github.com/gin-gonic/gin"
	ginSwagger "github.com/swaggo/gin-swagger"

	swaggerFiles "github.com/swaggo/files"

	"github.com/previewlabs/preview-backend/pkg/api/handlers"
	"github.com/previewlabs/preview-backend/pkg/api/servers"
)

func SetupRoutes(server *servers.Server) {
	apiV1 := server.Router.Group("/api/v1")
	setupV1Routes(apiV1, server)

	server.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func setupV1Routes(router *gin.RouterGroup, server *servers.Server) {
	setupHealthRoutes(router.Group("/health"))
	setupBuildRoutes(router.Group("/builds"), server)
}

func setupHealthRoutes(router *gin.RouterGroup) {
	handler := handlers.NewHealthHandler()
	router.GET("", handler.GetHealth)
}

func setupBuildRoutes(router *gin.RouterGroup, server *servers.Server) {
	handler := handlers.NewBuildHandler(server.PreviewService)
	router.POST("", handler.Create)
	router.GET("", handler.GetAll)
	router.GET("/:id", handler.GetByID)
	router.POST("/:id/resolve", handler.Resolve)
	router.GET("/:id/deploys", handler.GetDeploys)
	router.POST("/:id/overrides", handler.AddOverride)
	router.DELETE("/:id", handler.Teardown)
}
