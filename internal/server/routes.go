package server

import (
	"meridian/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Document routes
	apiRoutes.POST("/documents", routes.UploadDocumentsHandler)
	apiRoutes.DELETE("/documents/:id", routes.DeleteDocumentHandler)

	// Knowledge graph routes
	apiRoutes.GET("/knowledge/search", routes.SearchEntitiesHandler)
	apiRoutes.GET("/knowledge/entities/:id", routes.GetEntityHandler)
	apiRoutes.POST("/knowledge/entities", routes.CreateEntityHandler)
	apiRoutes.DELETE("/knowledge/entities/:id", routes.DeleteEntityHandler)
	apiRoutes.GET("/knowledge/entities/:id/relationships", routes.GetEntityRelationshipsHandler)
	apiRoutes.POST("/knowledge/relationships", routes.CreateRelationshipHandler)
	apiRoutes.GET("/knowledge/paths", routes.GetPathsHandler)
	apiRoutes.GET("/knowledge/statistics", routes.GetStatisticsHandler)

	// Context routes
	apiRoutes.POST("/context/build", routes.BuildContextHandler)
	apiRoutes.POST("/context/content", routes.BuildContentContextHandler)
	apiRoutes.POST("/context/analysis", routes.BuildAnalysisContextHandler)

	// Grounded generation
	apiRoutes.POST("/generate", routes.GenerateHandler)
}
