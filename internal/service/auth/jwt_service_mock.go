package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// MockJWTService is a mock implementation of the JWTService interface for testing.
type MockJWTService struct {
	GenerateTokenFunc func(ctx context.Context, user *domain.User, ttl time.Duration) (string, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*Claims, error)

	Token           string
	TokenError      error
	ValidationError error
	Claims          *Claims
}

// NewMockJWTService creates a new mock JWT service with default values.
func NewMockJWTService() *MockJWTService {
	now := time.Now()
	userID := uuid.New()
	return &MockJWTService{
		Token: "mock-jwt-token",
		Claims: &Claims{
			UserID:    userID,
			Username:  "mock",
			Role:      domain.RoleUser,
			Subject:   "mock",
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
			ID:        uuid.New().String(),
		},
	}
}

var _ JWTService = (*MockJWTService)(nil)

// GenerateToken implements JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, user *domain.User) (string, error) {
	return m.GenerateTokenWithTTL(ctx, user, time.Hour)
}

// GenerateTokenWithTTL implements JWTService.
func (m *MockJWTService) GenerateTokenWithTTL(ctx context.Context, user *domain.User, ttl time.Duration) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(ctx, user, ttl)
	}
	return m.Token, m.TokenError
}

// IssueToken implements JWTService.
func (m *MockJWTService) IssueToken(ctx context.Context, user *domain.User) (*IssuedToken, error) {
	token, err := m.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, ID: "mock-jti", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// ValidateToken implements JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, tokenString)
	}
	return m.Claims, m.ValidationError
}

// WithValidationError sets a custom token validation error and returns the mock.
func (m *MockJWTService) WithValidationError(err error) *MockJWTService {
	m.ValidationError = err
	return m
}

// WithClaims sets custom claims and returns the mock.
func (m *MockJWTService) WithClaims(claims *Claims) *MockJWTService {
	m.Claims = claims
	return m
}
