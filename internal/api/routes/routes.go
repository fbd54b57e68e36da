package routes

import (
	"dimop-backend/internal/api/handlers"
	"dimop-backend/internal/api/middleware"
	"dimop-backend/internal/config"
	"dimop-backend/internal/registry"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(reg *registry.Registry, cfg *config.Config) *gin.Engine {
	// Create router
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	projectHandler := handlers.NewProjectHandler(reg)
	materialHandler := handlers.NewMaterialHandler(reg)
	componentHandler := handlers.NewComponentHandler(reg)
	transferHandler := handlers.NewTransferHandler(reg)

	// Health check route
	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)

			projects.POST("/:id/materials", materialHandler.CreateMaterial)
			projects.GET("/:id/materials", materialHandler.ListMaterials)
			projects.GET("/:id/materials/:materialID", materialHandler.GetMaterial)
			projects.PUT("/:id/materials/:materialID", materialHandler.UpdateMaterial)
			projects.DELETE("/:id/materials/:materialID", materialHandler.DeleteMaterial)

			projects.POST("/:id/components", componentHandler.CreateComponent)
			projects.GET("/:id/components", componentHandler.ListComponents)
			projects.GET("/:id/components/tree", componentHandler.GetTree)
			projects.GET("/:id/components/graph", componentHandler.GetGraph)
			projects.GET("/:id/components/:componentID", componentHandler.GetComponent)
			projects.PUT("/:id/components/:componentID", componentHandler.UpdateComponent)
			projects.DELETE("/:id/components/:componentID", componentHandler.DeleteComponent)
			projects.GET("/:id/components/:componentID/evaluation", componentHandler.Evaluate)

			projects.GET("/:id/export", transferHandler.Export)
			projects.POST("/:id/import", transferHandler.Import)
		}
	}

	return router
}
