package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"service-area-api/internal/config"
	"service-area-api/internal/handler"
	"service-area-api/internal/logger"
	"service-area-api/internal/metrics"
	"service-area-api/internal/migrations"
	"service-area-api/internal/notify"
	"service-area-api/internal/registry"
	"service-area-api/internal/repository"
	"service-area-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

//	@title			Service Area API
//	@version		1.0
//	@description	Checks whether a location is inside an active service area and captures waitlist interest.
//	@BasePath		/

func main() {
	_ = godotenv.Load(".env")

	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	l := logger.Setup(config.LogLevel, config.LogFormat)
	if config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	conn, err := pgxpool.New(ctx, config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	if config.MigrateOnStart {
		if err := migrations.Up(ctx, conn); err != nil {
			log.Fatal().Err(err).Msg("cannot apply migrations")
		}
	}

	// Initialize layers
	repo := repository.NewRepository(conn)

	areaRegistry := registry.New(repo,
		registry.WithMaxAge(config.RegistryMaxAge),
		registry.WithObserver(metrics.RegistryObserver{}),
	)
	if err := areaRegistry.Refresh(ctx); err != nil {
		// Reads retry the load, so a cold database does not keep the API down.
		log.Warn().Err(err).Msg("initial service area load failed")
	}

	var invalidator service.Invalidator = areaRegistry
	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: config.RedisAddr, Password: config.RedisPassword})
		defer rdb.Close()

		instance := notify.NewInstanceID()
		invalidator = notify.NewBroadcaster(areaRegistry, rdb, config.RedisChannel, instance, l)

		subscriber := notify.NewSubscriber(areaRegistry, instance, l)
		go func() {
			if err := subscriber.Listen(ctx, rdb, config.RedisChannel); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("service area invalidation listener stopped")
			}
		}()
	}

	validationService := service.NewValidationService(areaRegistry)
	waitlistService := service.NewWaitlistService(repo, validationService, l)
	areaService := service.NewAreaService(repo, invalidator)

	r, err := newRouter(config, handlers{
		health:        handler.NewHealthHandler(repo),
		validation:    handler.NewValidationHandler(validationService),
		areas:         handler.NewAreaHandler(areaRegistry),
		waitlist:      handler.NewWaitlistHandler(waitlistService),
		adminAreas:    handler.NewAdminAreaHandler(areaService),
		adminWaitlist: handler.NewAdminWaitlistHandler(waitlistService),
	}, l)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build router")
	}

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", config.ServerAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
