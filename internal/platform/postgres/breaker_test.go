package postgres_test

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/platform/postgres"
	"github.com/phrazzld/agora-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker(t *testing.T) {
	t.Parallel()

	t.Run("trips after consecutive failures", func(t *testing.T) {
		t.Parallel()
		buf, log := logger.NewTestLogger(t)
		b := postgres.NewBreaker(postgres.BreakerConfig{
			ConsecutiveFailures: 2,
			OpenTimeout:         time.Minute,
		}, log)

		down := errors.New("connection refused")
		assert.ErrorIs(t, b.Do(func() error { return down }), down)
		assert.ErrorIs(t, b.Do(func() error { return down }), down)
		assert.Equal(t, "open", b.State())

		called := false
		err := b.Do(func() error { called = true; return nil })
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrUnavailable)
		assert.False(t, called)
		logger.AssertLogContains(t, buf, "circuit breaker state changed")
	})

	t.Run("domain outcomes do not trip", func(t *testing.T) {
		t.Parallel()
		_, log := logger.NewTestLogger(t)
		b := postgres.NewBreaker(postgres.BreakerConfig{ConsecutiveFailures: 1}, log)

		for _, err := range []error{store.ErrUserNotFound, store.ErrEmailExists, store.ErrInvalidQuery} {
			assert.ErrorIs(t, b.Do(func() error { return err }), err)
		}
		assert.Equal(t, "closed", b.State())
	})

	t.Run("defaults apply to zero config", func(t *testing.T) {
		t.Parallel()
		b := postgres.NewBreaker(postgres.BreakerConfig{}, nil)
		assert.NoError(t, b.Do(func() error { return nil }))
		assert.Equal(t, "closed", b.State())
	})
}
