package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	apiMiddleware "github.com/phrazzld/agora-api/internal/api/middleware"
	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/phrazzld/agora-api/internal/redact"
)

// setupRouter creates the router with the middleware chain and every route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewMetricsMiddleware(app.metrics))
	// An empty origin list allows every origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Accept-Encoding", "Content-Type",
			apiMiddleware.HeaderAPIVersion, apiMiddleware.HeaderAcceptLanguage,
			apiMiddleware.HeaderLanguage, apiMiddleware.HeaderAuthorization,
		},
		ExposedHeaders: []string{apiMiddleware.TraceHeader, "ETag"},
		MaxAge:         300,
	}))
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	r.Get("/health", app.health)
	r.Handle("/metrics", app.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(apiMiddleware.NewRequestContextMiddleware(app.jwtService))
		r.Get("/", app.handler.ServeHTTP)
		r.Post("/", app.handler.ServeHTTP)
	})

	return r
}

// health reports liveness and, with the postgres driver, database reachability.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "store": app.config.Store.Driver}
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Error("Health check database ping failed", redact.ErrorAttr(err))
			status["status"] = "degraded"
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, status)
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}
