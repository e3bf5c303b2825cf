package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/config"
	"taskboard/backend/internal/logger"
	"taskboard/backend/internal/routes"
	"taskboard/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	l := logger.New(cfg.App.LogLevel, cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		l.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := routes.Deps{
		HTTP:   cfg.HTTP,
		Logger: l,
		Store:  store,
		Tokens: services.NewJWTService(cfg.JWT.Secret, cfg.JWT.TTL),
	}

	// Redis はプロフィールキャッシュ用。未設定なら使わない
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			l.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, user cache disabled")
		} else {
			defer rdb.Close()
			deps.UserCache = cache.NewUserCache(rdb, cfg.Redis.TTL)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: routes.SetupRouter(deps),
	}

	go func() {
		l.Info().Str("addr", srv.Addr).Str("driver", cfg.Store.Driver).Str("base_path", cfg.HTTP.BasePath).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("graceful shutdown failed")
	}
}
