package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/agora-api/internal/api"
	"github.com/phrazzld/agora-api/internal/api/policy"
	"github.com/phrazzld/agora-api/internal/config"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/platform/metrics"
	"github.com/phrazzld/agora-api/internal/service"
	"github.com/phrazzld/agora-api/internal/service/auth"
)

// metricsNamespace prefixes every exported Prometheus series.
const metricsNamespace = "agora"

// application holds the shared dependencies of the server so they can be
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	metrics    *metrics.Collector
	jwtService auth.JWTService
	handler    *api.Handler
}

// newApplication opens the stores and wires services, the response policy
// engine and the API handler.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app, err := assemble(cfg, logger, st)
	if err != nil {
		if st.db != nil {
			_ = st.db.Close()
		}
		return nil, err
	}
	return app, nil
}

// assemble builds the application around already opened stores.
func assemble(cfg *config.Config, logger *slog.Logger, st stores) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      st.db,
		metrics: metrics.NewCollector(metricsNamespace),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	catalog, err := i18n.NewCatalog(i18n.DefaultTables())
	if err != nil {
		return nil, fmt.Errorf("failed to build translation catalog: %w", err)
	}

	deps := service.Deps{
		Users:                  st.users,
		Posts:                  st.posts,
		Comments:               st.comments,
		Catalog:                catalog,
		Tokens:                 app.jwtService,
		Passwords:              auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		AllowPasswordlessLogin: cfg.Auth.AllowPasswordlessLogin,
		Logger:                 logger,
	}

	app.handler = api.NewHandler(api.HandlerDeps{
		Users:    service.NewUserService(deps),
		Posts:    service.NewPostService(deps),
		Comments: service.NewCommentService(deps),
		Catalog:  catalog,
		Policy:   policy.NewEngine(cfg.Cache, cfg.Compression, app.metrics, logger),
		Observer: app.metrics,
		Logger:   logger,
	})

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.Any("error", err))
		}
	}
	app.logger.Info("Application shutdown completed")
}
