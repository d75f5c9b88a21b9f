package auth

import (
	"context"
	"time"
)

// RevocationList tracks tokens invalidated before their expiry.
// Implementations must keep a revocation until at least until+ClockSkew,
// since ValidateToken accepts tokens that long past their expiry.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NoopRevocationList never revokes anything. It is used when no Redis
// server is configured, in which case logout is advisory only.
type NoopRevocationList struct{}

// Revoke implements RevocationList.
func (NoopRevocationList) Revoke(context.Context, string, time.Time) error { return nil }

// IsRevoked implements RevocationList.
func (NoopRevocationList) IsRevoked(context.Context, string) (bool, error) { return false, nil }
