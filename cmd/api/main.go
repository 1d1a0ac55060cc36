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
	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/config"
	"ecomdemo/datagen/database"
	"ecomdemo/datagen/handlers"
	"ecomdemo/datagen/logger"
	"ecomdemo/datagen/middleware"
	"ecomdemo/datagen/store"
	"ecomdemo/datagen/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.AppName, cfg.LogLevel)

	if err := cfg.API.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid API config")
	}
	if err := cfg.ClickHouse.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid ClickHouse config")
	}

	if cfg.API.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	issuer, err := utils.NewTokenIssuer(cfg.API.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET_KEY must be set")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// PostgreSQL holds analyst accounts.
	pgClient, err := database.NewPostgresDB(startCtx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL")
	}
	defer pgClient.Close()

	// ClickHouse holds the clickstream tables.
	chClient, err := database.NewClickHouseDB(startCtx, cfg.ClickHouse)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize ClickHouse")
	}
	defer chClient.Close()

	analystStore := store.NewAnalystStore(pgClient.DB)
	if err := analystStore.EnsureSchema(startCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare analyst schema")
	}
	analyticsStore := store.NewAnalyticsStore(chClient)
	if err := analyticsStore.EnsureSchema(startCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare clickstream schema")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.HTTPLogger(), middleware.CORSMiddleware(cfg.API.FEOrigin))
	handlers.RegisterRoutes(r,
		handlers.NewAuthHandlers(analystStore, issuer),
		handlers.NewAnalyticsHandlers(analyticsStore),
		issuer,
		cfg.API.DefaultToken,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.API.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.API.Port).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exiting")
}
