// Package redis stores revoked token IDs in Redis so every API instance
// rejects a token once its owner has logged out.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kanban-api/internal/service/auth"
	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces revocation keys.
const KeyPrefix = "kanban:revoked:"

// RevocationList records revoked token IDs until the tokens would stop
// validating anyway, which is their expiry plus auth.ClockSkew.
type RevocationList struct {
	client *goredis.Client
	logger *slog.Logger
	now    func() time.Time
	leeway time.Duration
}

var _ auth.RevocationList = (*RevocationList)(nil)

// NewRevocationList wraps an existing client.
func NewRevocationList(client *goredis.Client, logger *slog.Logger) *RevocationList {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevocationList{
		client: client,
		logger: logger.With(slog.String("component", "revocation_list")),
		now:    time.Now,
		leeway: auth.ClockSkew,
	}
}

// Connect parses a redis:// URL, pings the server and returns a list
// backed by it.
func Connect(ctx context.Context, url string, logger *slog.Logger) (*RevocationList, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRevocationList(client, logger), nil
}

func key(jti string) string {
	return KeyPrefix + jti
}

// Revoke marks jti as revoked until the given expiry plus the validation
// leeway. Tokens already past that point are ignored.
func (r *RevocationList) Revoke(ctx context.Context, jti string, until time.Time) error {
	if jti == "" {
		return errors.New("token has no id")
	}
	ttl := until.Add(r.leeway).Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, key(jti), 1, ttl).Err(); err != nil {
		r.logger.Error("failed to revoke token", slog.String("error", err.Error()))
		return fmt.Errorf("revoke token: %w", err)
	}
	r.logger.Debug("token revoked", slog.Duration("ttl", ttl))
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}

// Close releases the underlying client.
func (r *RevocationList) Close() error {
	return r.client.Close()
}
