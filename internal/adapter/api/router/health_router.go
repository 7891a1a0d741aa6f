package router

import (
	"github.com/labstack/echo/v4"

	"weshop/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo, healthHandler *handler.HealthHandler) {
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/db-health", healthHandler.CheckDatabaseHealth)
}
