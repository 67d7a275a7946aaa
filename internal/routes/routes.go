package routes

import (
	"recording_backend/internal/handlers"
	"recording_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// uploadMiddlewares выполняются только для POST /upload.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	uploadMiddlewares ...gin.HandlerFunc,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)
	appHandlers.UploadHandler.RegisterRoutes(ginRouter, uploadMiddlewares...)

	for _, route := range ginRouter.Routes() {
		logger.Debug("Route registered", "method", route.Method, "path", route.Path)
	}
	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
