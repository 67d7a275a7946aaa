package services

import (
	"bufio"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"recording_backend/internal/logger"
	"recording_backend/internal/services/dto"
	"recording_backend/internal/storage"
	"recording_backend/internal/utils"
	"recording_backend/pkg/apperrors"

	"github.com/google/uuid"
)

const (
	rawFilenamePrefix  = "recording_"
	rawFilenameExt     = "wav"
	fallbackStem       = "recording"
	defaultContentType = "application/octet-stream"
	suffixLength       = 8
)

// ============================================
// UPLOAD SERVICE
// ============================================

type UploadService interface {
	// UploadRaw сохраняет всё тело запроса как recording_<ts>.wav
	UploadRaw(ctx context.Context, body io.Reader) (*dto.UploadResponse, error)

	// UploadMultipart сохраняет файл из multipart-поля как <ts>_<filename>
	UploadMultipart(ctx context.Context, filename string, body io.Reader) (*dto.UploadResponse, error)
}

// ============================================
// КОНФИГУРАЦИЯ
// ============================================

type UploadConfig struct {
	// Разрешённые расширения: в нижнем регистре, без точки
	AllowedExtensions []string
}

// Option настраивает uploadService
type Option func(*uploadService)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *uploadService) {
		s.now = now
	}
}

// WithSuffix подменяет генератор суффиксов уникальности
func WithSuffix(suffix func() string) Option {
	return func(s *uploadService) {
		s.suffix = suffix
	}
}

type uploadService struct {
	storage storage.Storage
	config  *UploadConfig
	now     func() time.Time
	suffix  func() string
}

// ============================================
// КОНСТРУКТОР
// ============================================

func NewUploadService(storage storage.Storage, config *UploadConfig, opts ...Option) UploadService {
	if config == nil {
		config = &UploadConfig{AllowedExtensions: []string{"wav"}}
	}

	s := &uploadService{
		storage: storage,
		config:  config,
		now:     time.Now,
		suffix:  randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================
// ОСНОВНЫЕ МЕТОДЫ
// ============================================

func (s *uploadService) UploadRaw(ctx context.Context, body io.Reader) (*dto.UploadResponse, error) {
	br := bufio.NewReader(body)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.ErrNoFileProvided
		}
		return nil, mapWriteError(err)
	}

	name := rawFilenamePrefix + utils.FormatTimestamp(s.now()) + "." + rawFilenameExt
	return s.store(ctx, name, br, contentTypeFor(rawFilenameExt))
}

func (s *uploadService) UploadMultipart(ctx context.Context, filename string, body io.Reader) (*dto.UploadResponse, error) {
	if filename == "" {
		return nil, apperrors.ErrNoFileSelected
	}

	ext, ok := utils.AllowedExtension(filename, s.config.AllowedExtensions)
	if !ok {
		return nil, apperrors.ErrInvalidFileType
	}

	// Санитайзер может съесть всё имя (например, "../.wav" или "日本語.wav")
	safe := utils.SanitizeFilename(filename)
	if _, ok := utils.AllowedExtension(safe, s.config.AllowedExtensions); !ok {
		// Одинаковые запасные имена в одну секунду разводит суффикс в store
		safe = fallbackStem + "." + ext
	}

	name := utils.FormatTimestamp(s.now()) + "_" + safe
	return s.store(ctx, name, body, contentTypeFor(ext))
}

// store пишет body в хранилище. Первое имя - name как есть, следующие
// попытки добавляют случайный суффикс, чтобы загрузки в одну секунду
// не затирали друг друга.
func (s *uploadService) store(ctx context.Context, name string, body io.Reader, contentType string) (*dto.UploadResponse, error) {
	names := func(attempt int) string {
		if attempt == 0 {
			return name
		}
		return utils.WithSuffix(name, s.suffix())
	}

	saved, size, err := s.storage.Save(ctx, names, body, contentType)
	if err != nil {
		return nil, mapWriteError(err)
	}

	logger.CtxInfo(ctx, "Recording stored", "filename", saved, "size_bytes", size)
	return dto.NewUploadResponse(saved), nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

// mapWriteError: превышение лимита тела -> PayloadTooLarge,
// всё остальное -> StorageWriteFailed с причиной внутри.
func mapWriteError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.ErrPayloadTooLarge.WithError(err)
	}
	return apperrors.ErrStorageWriteFailed.WithError(err)
}

func contentTypeFor(ext string) string {
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return defaultContentType
}

func randomSuffix() string {
	return uuid.NewString()[:suffixLength]
}
