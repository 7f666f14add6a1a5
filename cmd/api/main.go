package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/memerator/internal/api"
	"github.com/timmy/memerator/internal/config"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/repository"
	"github.com/timmy/memerator/internal/service"
	"github.com/timmy/memerator/internal/source/imgflip"
	"github.com/timmy/memerator/internal/storage"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefault(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to access database handle")
	}
	defer sqlDB.Close()

	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	memeRepo := repository.NewMemeRepository(db)

	ctx := context.Background()

	// Rendered memes are archived only when storage is configured
	var archiver *service.ImageArchiver
	if cfg.Storage.Enabled {
		objectStorage, err := storage.NewStorage(&cfg.Storage)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
		archiver = service.NewImageArchiver(objectStorage, cfg.Imgflip.Timeout)
		appLogger.WithFields(logger.Fields{
			"type":   cfg.Storage.Type,
			"bucket": cfg.Storage.Bucket,
		}).Info("Meme archive enabled")
	}

	templateService := service.NewTemplateService(
		templateRepo,
		imgflip.NewAdapter(cfg.Imgflip.BaseURL, cfg.Imgflip.Timeout),
		appLogger,
		&service.TemplateConfig{},
	)

	captions := service.NewOpenAICaptionGenerator(&service.CaptionConfig{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})

	renderer := service.NewImgflipRenderer(&service.ImgflipConfig{
		BaseURL:  cfg.Imgflip.BaseURL,
		Username: cfg.Imgflip.Username,
		Password: cfg.Imgflip.Password,
		Timeout:  cfg.Imgflip.Timeout,
	})

	authService := service.NewAuthService(userRepo, appLogger, &service.AuthConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenTTL:       cfg.Auth.TokenTTL,
		InitialCredits: cfg.Auth.InitialCredits,
	})

	memeService := service.NewMemeService(memeRepo, templateService, captions, renderer, archiver, appLogger)

	router := api.SetupRouter(api.Services{
		Auth:      authService,
		Memes:     memeService,
		Templates: templateService,
		DB:        sqlDB,
	}, cfg, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":  cfg.Server.Port,
			"mode":  cfg.Server.Mode,
			"model": captions.GetModel(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
