package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService signs and verifies the bearer tokens issued by login.
type JWTService interface {
	// GenerateToken creates a signed token carrying the user's id and email.
	GenerateToken(ctx context.Context, userID uuid.UUID, email string) (string, error)

	// ValidateToken verifies signature and expiry and returns the claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the identity facts extracted from a valid token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
