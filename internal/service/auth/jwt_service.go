package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for user with the
	// configured lifetime.
	GenerateToken(ctx context.Context, user *domain.User) (string, error)

	// GenerateTokenWithTTL creates a signed access token that expires after ttl.
	GenerateTokenWithTTL(ctx context.Context, user *domain.User, ttl time.Duration) (string, error)

	// IssueToken is GenerateToken returning the token's expiry and ID as well.
	IssueToken(ctx context.Context, user *domain.User) (*IssuedToken, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrInvalidToken, ErrExpiredToken or ErrTokenNotYetValid on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// IssuedToken is a freshly signed token and its metadata.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
