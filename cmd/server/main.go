package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sunflowerskg/internal/config"
	"github.com/sunflowerskg/internal/db"
	"github.com/sunflowerskg/internal/handler"
	"github.com/sunflowerskg/internal/logging"
	"github.com/sunflowerskg/internal/router"
	"github.com/sunflowerskg/internal/service"
	"github.com/sunflowerskg/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	gin.SetMode(cfg.GinMode)
	if cfg.InsecureJWTSecret {
		logger.WithField("gin_mode", cfg.GinMode).Warn("JWT_SECRET not set, using the built-in development key")
	}

	// 初始化数据库
	gdb, err := db.Open(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseURL,
		Silent: cfg.GinMode == gin.ReleaseMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.WithError(err).Error("failed to close database")
		}
	}()

	created, err := db.EnsureUser(gdb, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail)
	if err != nil {
		logger.WithError(err).Fatal("failed to ensure admin user")
	}
	if created {
		logger.WithField("username", cfg.AdminUsername).Info("created admin user")
	}

	files, err := storage.New(cfg.UploadDir, cfg.UploadURLPath, cfg.MaxUploadBytes)
	if err != nil {
		logger.WithError(err).Fatal("failed to prepare upload directory")
	}

	auth := service.NewAuthService(gdb, cfg.JWTSecret, cfg.TokenTTL)
	api := handler.NewAPI(gdb, files, auth, logger)
	r := router.SetupRouter(api, router.Options{
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("server listening")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
		}
	case sig := <-shutdown:
		logger.WithField("signal", sig.String()).Info("start shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("could not stop server gracefully")
			if err := server.Close(); err != nil {
				logger.WithError(err).Error("could not force stop server")
			}
		}
	}
}
