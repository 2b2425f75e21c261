package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/agora-api/internal/store"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker guarding the database.
type BreakerConfig struct {
	Name string
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// Breaker fails fast with store.ErrUnavailable while the database keeps
// failing. Domain outcomes (not found, duplicate, bad query) count as success.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker builds a breaker; zero fields take defaults (5 failures, 30s).
func NewBreaker(cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "postgres"
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "db_breaker"))

	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		IsSuccessful: isHealthy,
	})}
}

// isHealthy reports whether err says nothing about database health.
func isHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrDuplicate) ||
		errors.Is(err, store.ErrInvalidQuery) ||
		errors.Is(err, store.ErrInvalidEntity) ||
		errors.Is(err, context.Canceled)
}

// Do runs fn through the breaker.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(store.ErrUnavailable, err)
	}
	return err
}

// State returns the breaker state name (closed, half-open, open).
func (b *Breaker) State() string {
	return b.cb.State().String()
}
