package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/agora-api/internal/config"
	"github.com/phrazzld/agora-api/internal/platform/memory"
	"github.com/phrazzld/agora-api/internal/platform/postgres"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/store"
)

// stores groups the persistence engines chosen by store.driver.
type stores struct {
	users    store.UserStore
	posts    store.PostStore
	comments store.CommentStore
	// db is nil for the memory driver.
	db *sql.DB
}

// openDatabase establishes a connection to the database and configures the
// connection pool.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("Database ping failed", redact.ErrorAttr(err))
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns))
	return db, nil
}

// openStores builds the stores for the configured driver. The postgres
// driver shares one circuit breaker across all tables and applies pending
// migrations when database.auto_migrate is set.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (stores, error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn("Using the in-memory store; data is lost on restart")
		mem := memory.New()
		return stores{users: mem.Users(), posts: mem.Posts(), comments: mem.Comments()}, nil
	}

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return stores{}, err
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db, postgres.MigrateUp, logger); err != nil {
			_ = db.Close()
			return stores{}, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	breaker := postgres.NewBreaker(postgres.BreakerConfig{
		Name:                "postgres",
		ConsecutiveFailures: cfg.Database.BreakerFailures,
		OpenTimeout:         time.Duration(cfg.Database.BreakerTimeoutS) * time.Second,
	}, logger)

	return stores{
		users:    postgres.NewUserStore(db, breaker, logger),
		posts:    postgres.NewPostStore(db, breaker, logger),
		comments: postgres.NewCommentStore(db, breaker, logger),
		db:       db,
	}, nil
}
