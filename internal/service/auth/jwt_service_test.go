package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestJWTService(t *testing.T, secret string, lifetime time.Duration, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACService(config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: int(lifetime / time.Minute),
	}, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 24 * time.Hour
	userID := uuid.New()
	svc := newTestJWTService(t, testSecret, lifetime, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), userID, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	userID := uuid.New()
	at := func(d time.Duration) func() time.Time {
		return func() time.Time { return fixedTime.Add(d) }
	}

	tests := []struct {
		name    string
		setup   func(t *testing.T) (JWTService, string)
		wantErr error
	}{
		{
			name: "valid token",
			setup: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, lifetime, at(0))
				token, err := svc.GenerateToken(context.Background(), userID, "a@b.co")
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "within clock skew",
			setup: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, lifetime, at(0)).
					GenerateToken(context.Background(), userID, "a@b.co")
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, lifetime, at(lifetime+time.Minute)), token
			},
		},
		{
			name: "expired token",
			setup: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, lifetime, at(0)).
					GenerateToken(context.Background(), userID, "a@b.co")
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, lifetime, at(lifetime+time.Hour)), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "invalid signature",
			setup: func(t *testing.T) (JWTService, string) {
				token, err := newTestJWTService(t, testSecret, lifetime, at(0)).
					GenerateToken(context.Background(), userID, "a@b.co")
				require.NoError(t, err)
				wrong := "wrong-secret-that-is-long-enough-for-testing"
				return newTestJWTService(t, wrong, lifetime, at(0)), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setup: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, lifetime, at(0)), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setup: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, lifetime, at(0)), ""
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "wrong algorithm",
			setup: func(t *testing.T) (JWTService, string) {
				claims := jwtCustomClaims{
					UserID: userID,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, lifetime, at(0)), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			setup: func(t *testing.T) (JWTService, string) {
				claims := jwtCustomClaims{UserID: userID}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return newTestJWTService(t, testSecret, lifetime, at(0)), token
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setup(t)
			claims, err := svc.ValidateToken(context.Background(), token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
