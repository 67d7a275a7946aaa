package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"recording_backend/internal/config"
	"recording_backend/internal/handlers"
	"recording_backend/internal/logger"
	"recording_backend/internal/middleware"
	"recording_backend/internal/routes"
	"recording_backend/internal/services"
	"recording_backend/internal/storage"

	"github.com/gin-gonic/gin"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	storageLog := logger.With("component", "storage", "type", cfg.Storage.Type)
	storageInstance, err := NewStorage(cfg)
	if err != nil {
		storageLog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if cfg.Storage.Type == "cloudflare_r2" {
		storageLog.Info("Storage initialized", "bucket", cfg.Storage.Bucket, "endpoint", cfg.Storage.Endpoint)
	} else {
		storageLog.Info("Storage initialized", "path", cfg.Storage.BasePath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ginRouter, cleanup := SetupRouter(cfg, storageInstance)
	defer cleanup()

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      ginRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting", "address", server.Addr, "max_upload_bytes", cfg.Upload.MaxSize)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
}

// NewStorage создаёт хранилище из конфигурации
func NewStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
}

// SetupRouter собирает сервис, хэндлеры и gin-роутер.
// cleanup останавливает фоновые задачи (очистку лимитеров).
func SetupRouter(cfg *config.Config, storageInstance storage.Storage, opts ...services.Option) (*gin.Engine, func()) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	uploadService := services.NewUploadService(storageInstance, &services.UploadConfig{
		AllowedExtensions: cfg.Upload.AllowedExtensions,
	}, opts...)

	baseHandler := handlers.NewBaseHandler()
	appHandlers := &handlers.AppHandlers{
		UploadHandler: handlers.NewUploadHandler(baseHandler, uploadService, cfg.Upload.Mode, cfg.Upload.FieldName),
		HealthHandler: handlers.NewHealthHandler(storageInstance),
	}

	ginRouter := initializeGinRouter()

	cleanup := func() {}
	uploadMiddlewares := []gin.HandlerFunc{}
	if cfg.RateLimit.Limit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Burst)
		go limiter.Start()
		cleanup = limiter.Stop
		uploadMiddlewares = append(uploadMiddlewares, limiter.Middleware())
		logger.Info("Upload rate limiter initialized", "limit", cfg.RateLimit.Limit, "burst", cfg.RateLimit.Burst)
	}
	uploadMiddlewares = append(uploadMiddlewares, middleware.BodyLimitMiddleware(cfg.Upload.MaxSize))

	routes.RegisterRoutes(ginRouter, appHandlers, uploadMiddlewares...)

	return ginRouter, cleanup
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	return router
}
