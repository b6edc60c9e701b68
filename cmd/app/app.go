// Package main is the entry point for the currency converter service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"converterservice/internal/config"
	"converterservice/internal/provider"
	"converterservice/internal/repository"
	"converterservice/internal/service"
	"converterservice/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg         *config.Config
	logger      *zap.SugaredLogger
	rdbCache    *redis.Client
	rdbAsynq    *redis.Client
	asynqClient *asynq.Client
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	httpServer  *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	app.rdbCache = redis.NewClient(&redis.Options{
		Addr: app.cfg.Redis.CacheAddr,
	})
	if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)

	return nil
}

func (app *App) initServices() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
		},
	)
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	liveSource, err := app.newLiveSource()
	if err != nil {
		return err
	}

	historicalSource := provider.NewCachedHistoricalSource(
		provider.NewNBPProvider(
			app.cfg.NBP.BaseURL,
			app.cfg.NBP.Timeout,
			app.cfg.NBP.RetryAttempts,
			app.cfg.NBP.RetryWaitSec,
		),
		app.rdbCache,
		"nbp",
	)
	resolver := service.NewResolver(historicalSource, app.cfg.Resolver.MaxFallbackDays, app.logger)

	exportRepo := repository.NewRedisExportRepository(
		app.rdbCache,
		time.Duration(app.cfg.Export.TTLSec)*time.Second,
	)
	asynqEnqueuer := worker.NewAsynqEnqueuer(
		app.asynqClient,
		app.cfg.Worker.MaxRetry,
		time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
	)

	converterService := service.NewConverterService(
		liveSource,
		resolver,
		exportRepo,
		asynqEnqueuer,
		app.logger,
	)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(service.TaskTypeGenerateExport, worker.NewExportHandler(converterService, app.logger))

	app.initHTTP(converterService)
	return nil
}

// newLiveSource selects the live rate source at wiring time: with an API key
// the exchangerate-api.com provider is used behind the Redis cache, without
// one the embedded static table serves a fixed set of pairs. There is no
// runtime fallback between the two.
func (app *App) newLiveSource() (provider.LiveRateSource, error) {
	if app.cfg.ExchangeRateAPI.APIKey != "" {
		p := provider.NewExchangeRateAPIProvider(
			app.cfg.ExchangeRateAPI.BaseURL,
			app.cfg.ExchangeRateAPI.APIKey,
			app.cfg.ExchangeRateAPI.Timeout,
		)
		ttl := time.Duration(app.cfg.Cache.LiveTTLSec) * time.Second
		app.logger.Infow("Using exchangerate-api.com live source", "base_url", app.cfg.ExchangeRateAPI.BaseURL)
		return provider.NewCachedLiveSource(p, app.rdbCache, ttl, "exchangerate_api"), nil
	}

	app.logger.Warnw("No exchangerate_api.api_key configured, using the static fallback table")
	static, err := provider.NewStaticSource()
	if err != nil {
		return nil, fmt.Errorf("load static rate table: %w", err)
	}
	return static, nil
}

// Run starts the HTTP server and Asynq worker, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> Asynq worker -> connections.
// This ensures in-flight export tasks finish before the Redis connections close.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Drain in-flight Asynq tasks
	app.asynqServer.Shutdown()

	// 3. Close connections (asynq client, Redis)
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
