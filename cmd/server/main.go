package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brueckenwerk/cms/internal/api"
	"github.com/brueckenwerk/cms/internal/app"
	"github.com/brueckenwerk/cms/internal/config"
	"github.com/brueckenwerk/cms/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		logging.Setup("info", false)
		log.Fatal().Err(err).Msg("Configuration error")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	log.Info().
		Str("git_sha", os.Getenv("GIT_SHA")).
		Str("build_time", os.Getenv("BUILD_TIME")).
		Str("content_driver", cfg.ContentDriver).
		Str("storage_driver", cfg.StorageDriver).
		Msg("CMS server starting")

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, admin routes will reject every request")
	}

	startCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	deps, err := app.New(startCtx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer deps.Close(ctx)

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	var pinger api.Pinger
	if p, ok := deps.Objects.(api.Pinger); ok {
		pinger = p
	}
	handler := api.NewHandler(api.Deps{
		Content:        deps.Content,
		Media:          deps.Media,
		Storage:        pinger,
		Tokens:         deps.Tokens,
		Mailer:         deps.Mailer,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	router := api.NewRouter(handler, api.RouterConfig{CORSOrigin: cfg.CORSOrigin})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
