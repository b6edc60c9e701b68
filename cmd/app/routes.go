package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"converterservice/internal/api"
	"converterservice/internal/api/middleware"
	"converterservice/internal/service"
)

func (app *App) initHTTP(converterService service.ConverterServiceInterface) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/convert", api.HandleConvert(converterService))
	r.Get("/symbols", api.HandleListSymbols(converterService))
	r.Get("/rates/historical", api.HandleHistoricalRate(converterService))
	r.Get("/rates/history", api.HandleHistoricalSeries(converterService))
	r.Post("/exports", api.HandleRequestExport(converterService))
	r.Get("/exports/{id}", api.HandleGetExport(converterService))
	r.Get("/exports/{id}/download", api.HandleDownloadExport(converterService))
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.rdbCache, app.rdbAsynq))

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	if app.cfg.Server.ServeAsynqmon {
		mon := asynqmon.New(asynqmon.Options{
			RootPath:     "/monitoring",
			RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
		})
		r.Mount(mon.RootPath(), mon)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
