package logger

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var log atomic.Pointer[slog.Logger]

// New создает логгер для окружения env, пишущий в w.
// env: "development" или "production"
func New(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}

	if env == "development" {
		// Development: читаемый текстовый формат
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		// Production: JSON формат для парсинга
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// Init инициализирует глобальный логгер
func Init(env string) {
	SetLogger(New(env, os.Stdout))
}

// SetLogger заменяет глобальный логгер (используется в тестах)
func SetLogger(l *slog.Logger) {
	log.Store(l)
	slog.SetDefault(l)
}

// GetLogger возвращает глобальный логгер
func GetLogger() *slog.Logger {
	if l := log.Load(); l != nil {
		return l
	}
	// Fallback если Init не вызван
	l := New("development", os.Stdout)
	log.CompareAndSwap(nil, l)
	return log.Load()
}

// Debug логирует debug сообщение
func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

// Info логирует info сообщение
func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

// Warn логирует warning сообщение
func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

// Error логирует error сообщение
func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Fatal логирует fatal ошибку и завершает программу
func Fatal(msg string, args ...any) {
	GetLogger().Error(msg, args...)
	os.Exit(1)
}

// With создает новый логгер с дополнительными полями
// Пример: logger.With("component", "storage").Info("initialized")
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}
