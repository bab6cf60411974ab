package server

import (
	"github.com/soumendrak/ragas/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api/v1")

	apiRoutes.POST("/testset", routes.GenerateTestsetHandler)
	apiRoutes.POST("/graph/enrich", routes.EnrichGraphHandler)
}
