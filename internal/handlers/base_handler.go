package handlers

import (
	"recording_backend/internal/logger"
	"recording_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// ============================================================================
// 2. Обработка ошибок (с контекстным логгированием)
// ============================================================================

// HandleServiceError логирует ошибку и пишет ответ.
// Для 5xx причина попадает только в лог, клиент получает общее сообщение.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.InternalError(err)
	}

	if appErr.IsServerError() {
		cause := appErr.Unwrap()
		if cause == nil {
			cause = appErr
		}
		logger.CtxWithError(ctx, "Upload failed", cause,
			"code", appErr.Code,
			"path", c.Request.URL.Path,
		)
	} else {
		logger.CtxWarn(ctx, "Upload rejected",
			"code", appErr.Code,
			"error", appErr.Message,
			"path", c.Request.URL.Path,
		)
	}

	apperrors.HandleError(c, appErr)
}
