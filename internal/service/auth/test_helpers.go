package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// DefaultJWTConfig returns a configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		Algorithm:            "HS256",
		TokenLifetimeMinutes: 60,
		BcryptCost:           4,
	}
}

// RequireTestJWTService creates a JWT service with DefaultJWTConfig and
// fails the test if that is not possible.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	service, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return service
}

// NewTestUser returns an active user with a fast bcrypt hash of password.
func NewTestUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := HashPassword(password, 4)
	require.NoError(t, err)
	now := time.Now().UTC()
	return &domain.User{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: hash,
		IsActive:       true,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// GenerateAuthHeaderForTestingT returns a "Bearer <token>" header value for user.
func GenerateAuthHeaderForTestingT(t *testing.T, svc JWTService, user *domain.User) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err, "Failed to generate auth header")
	return "Bearer " + token
}
