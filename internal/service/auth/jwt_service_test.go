package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg config.AuthConfig) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(cfg)
	require.NoError(t, err)
	return svc.(*hmacJWTService)
}

func TestNewJWTServiceValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.AuthConfig)
	}{
		{"short secret", func(c *config.AuthConfig) { c.JWTSecret = "short" }},
		{"unsupported algorithm", func(c *config.AuthConfig) { c.Algorithm = "RS256" }},
		{"zero lifetime", func(c *config.AuthConfig) { c.TokenLifetimeMinutes = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultJWTConfig()
			tc.mutate(&cfg)
			_, err := NewJWTService(cfg)
			assert.Error(t, err)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			cfg := DefaultJWTConfig()
			cfg.Algorithm = alg
			svc := newTestService(t, cfg)
			user := NewTestUser(t, "johndoe", "password123", domain.RoleAdmin)
			ctx := context.Background()

			issued, err := svc.IssueToken(ctx, user)
			require.NoError(t, err)

			claims, err := svc.ValidateToken(ctx, issued.Token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, "johndoe", claims.Username)
			assert.Equal(t, "johndoe", claims.Subject)
			assert.Equal(t, domain.RoleAdmin, claims.Role)
			assert.Equal(t, issued.ID, claims.ID)
			assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)

			header, _, err := jwt.NewParser().ParseUnverified(issued.Token, jwt.MapClaims{})
			require.NoError(t, err)
			assert.Equal(t, alg, header.Method.Alg())
		})
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	svc := newTestService(t, DefaultJWTConfig())
	user := NewTestUser(t, "johndoe", "password123", domain.RoleUser)

	a, err := svc.IssueToken(context.Background(), user)
	require.NoError(t, err)
	b, err := svc.IssueToken(context.Background(), user)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService(t, DefaultJWTConfig())
	user := NewTestUser(t, "johndoe", "password123", domain.RoleUser)
	ctx := context.Background()

	token, err := svc.GenerateTokenWithTTL(ctx, user, time.Minute)
	require.NoError(t, err)

	// Still valid inside the clock skew window.
	svc.timeFunc = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	svc.timeFunc = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenNotYetValid(t *testing.T) {
	svc := newTestService(t, DefaultJWTConfig())
	user := NewTestUser(t, "johndoe", "password123", domain.RoleUser)

	svc.timeFunc = func() time.Time { return time.Now().Add(time.Hour) }
	token, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)

	svc.timeFunc = time.Now
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestInvalidTokens(t *testing.T) {
	svc := newTestService(t, DefaultJWTConfig())
	user := NewTestUser(t, "johndoe", "password123", domain.RoleUser)
	ctx := context.Background()

	valid, err := svc.GenerateToken(ctx, user)
	require.NoError(t, err)

	otherSecretCfg := DefaultJWTConfig()
	otherSecretCfg.JWTSecret = strings.Repeat("x", 40)
	otherSecret, err := newTestService(t, otherSecretCfg).GenerateToken(ctx, user)
	require.NoError(t, err)

	otherAlgCfg := DefaultJWTConfig()
	otherAlgCfg.Algorithm = "HS512"
	otherAlg, err := newTestService(t, otherAlgCfg).GenerateToken(ctx, user)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"uid": user.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"empty":         "",
		"garbage":       "not.a.token",
		"wrong secret":  otherSecret,
		"wrong alg":     otherAlg,
		"alg none":      unsigned,
		"tampered body": tampered,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMockJWTService(t *testing.T) {
	mock := NewMockJWTService().WithValidationError(ErrExpiredToken)
	_, err := mock.ValidateToken(context.Background(), "x")
	assert.ErrorIs(t, err, ErrExpiredToken)

	token, err := mock.GenerateToken(context.Background(), &domain.User{})
	require.NoError(t, err)
	assert.Equal(t, "mock-jwt-token", token)
}
