package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"recording_backend/internal/services"
	"recording_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Режимы приёма файла
const (
	ModeRaw       = "raw"
	ModeMultipart = "multipart"
	ModeAuto      = "auto"
)

// Сколько байт multipart-формы держать в памяти, остальное уходит во временные файлы
const multipartMemory = 8 << 20

// ============================================
// UPLOAD HANDLER
// ============================================

type UploadHandler struct {
	*BaseHandler
	uploadService services.UploadService
	mode          string
	fieldName     string
}

func NewUploadHandler(base *BaseHandler, uploadService services.UploadService, mode, fieldName string) *UploadHandler {
	if mode == "" {
		mode = ModeAuto
	}
	if fieldName == "" {
		fieldName = "audio"
	}
	return &UploadHandler{
		BaseHandler:   base,
		uploadService: uploadService,
		mode:          mode,
		fieldName:     fieldName,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *UploadHandler) RegisterRoutes(r gin.IRoutes, middlewares ...gin.HandlerFunc) {
	chain := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	chain = append(chain, middlewares...)
	chain = append(chain, h.UploadRecording)
	r.POST("/upload", chain...)
}

// ============================================
// HANDLERS
// ============================================

// UploadRecording - приём одной записи.
// В режиме auto multipart/form-data идёт в multipart-ветку, всё остальное - raw.
func (h *UploadHandler) UploadRecording(c *gin.Context) {
	if h.useMultipart(c) {
		h.uploadMultipart(c)
		return
	}
	h.uploadRaw(c)
}

func (h *UploadHandler) useMultipart(c *gin.Context) bool {
	switch h.mode {
	case ModeMultipart:
		return true
	case ModeRaw:
		return false
	default:
		return c.ContentType() == gin.MIMEMultipartPOSTForm
	}
}

// uploadRaw - всё тело запроса считается файлом
func (h *UploadHandler) uploadRaw(c *gin.Context) {
	response, err := h.uploadService.UploadRaw(c.Request.Context(), c.Request.Body)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// uploadMultipart - файл в поле формы h.fieldName
func (h *UploadHandler) uploadMultipart(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleServiceError(c, apperrors.ErrPayloadTooLarge.WithError(err))
			return
		}
		// Не multipart или битая форма: файловой части нет
		h.HandleServiceError(c, apperrors.ErrMissingFilePart.WithError(err))
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	files := form.File[h.fieldName]
	if len(files) == 0 {
		// Браузер присылает поле с filename="" если файл не выбран,
		// такая часть попадает в Value, а не в File
		if _, ok := form.Value[h.fieldName]; ok {
			h.HandleServiceError(c, apperrors.ErrNoFileSelected)
			return
		}
		h.HandleServiceError(c, apperrors.ErrMissingFilePart)
		return
	}

	fileHeader := files[0]
	src, err := openPart(fileHeader)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer src.Close()

	response, err := h.uploadService.UploadMultipart(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// openPart открывает уже принятую часть формы. Ошибка здесь - это сбой
// чтения временного файла multipart, а не записи в хранилище.
func openPart(fileHeader *multipart.FileHeader) (multipart.File, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return src, nil
}
