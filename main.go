package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "jsonapi/internal/config"
	router "jsonapi/internal/http"
	"jsonapi/internal/models"
	"jsonapi/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger := zerolog.New(os.Stdout).Level(env.LogLevel).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	set, err := openModels(ctx, env)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", env.StoreDriver).Msg("failed to open store")
	}
	defer intconfig.CloseDB(context.Background())

	obs, err := metrics.New(metrics.Config{Registry: prometheus.DefaultRegisterer})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register metrics")
	}

	r := router.NewRouter(env, router.Deps{
		Models:   set,
		Logger:   logger,
		Observer: obs,
		Gatherer: prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", env.AppAddr).Str("driver", env.StoreDriver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return
	}

	logger.Info().Msg("server stopped")
}

func openModels(ctx context.Context, env intconfig.Env) (models.Set, error) {
	switch env.StoreDriver {
	case intconfig.DriverMySQL:
		db, err := intconfig.ConnectDB(ctx, env.MySQLDSN)
		if err != nil {
			return models.Set{}, err
		}
		return models.MySQL(ctx, db)
	case intconfig.DriverMongo:
		client, err := intconfig.ConnectMongo(ctx, env.MongoURI)
		if err != nil {
			return models.Set{}, err
		}
		return models.Mongo(client.Database(env.MongoDatabase)), nil
	default:
		return models.Memory(), nil
	}
}
