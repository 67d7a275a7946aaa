package handlers

import (
	"net/http"

	"recording_backend/internal/logger"
	"recording_backend/internal/services/dto"
	"recording_backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	storage storage.Storage
}

func NewHealthHandler(storage storage.Storage) *HealthHandler {
	return &HealthHandler{storage: storage}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
}

// Health - liveness + доступность хранилища
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.storage.Ping(c.Request.Context()); err != nil {
		logger.CtxWithError(c.Request.Context(), "Storage health check failed", err)
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Storage: "unavailable"})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Storage: "ok"})
}
