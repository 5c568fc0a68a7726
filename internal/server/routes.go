package server

import (
	"github.com/vocal-lineage/backend/internal/server/middleware"
	"github.com/vocal-lineage/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, reg *prometheus.Registry) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	if reg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)
	read := middleware.RequirePermission(middleware.PermLineageRead)

	// Lineage routes
	apiRoutes.POST("/path", routes.FindPathHandler, read)
	apiRoutes.POST("/neighborhood", routes.NeighborhoodHandler, read)
	apiRoutes.POST("/neighborhood/expand", routes.ExpandNeighborhoodHandler, read)
	apiRoutes.POST("/counts", routes.CountsHandler, read)
	apiRoutes.POST("/search", routes.SearchHandler, read)
	apiRoutes.POST("/graph/retract", routes.RetractHandler, read)

	// Snapshot routes
	apiRoutes.POST("/snapshots", routes.CreateSnapshotHandler, middleware.RequirePermission(middleware.PermSnapshotSave))
	apiRoutes.GET("/snapshots/:id", routes.GetSnapshotHandler, middleware.RequirePermission(middleware.PermSnapshotView))
}
