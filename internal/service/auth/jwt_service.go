package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// JWTService issues and verifies signed bearer tokens.
type JWTService interface {
	// GenerateToken creates a signed token for subject carrying its roles.
	GenerateToken(
		ctx context.Context,
		subject string,
		userID uuid.UUID,
		roles domain.Roles,
	) (string, error)

	// ValidateToken checks signature and expiry and returns the embedded claims.
	// It never consults a store. Failures match ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a token.
type Claims struct {
	UserID    uuid.UUID
	Subject   string
	Roles     domain.Roles
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
