package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	traceID := GetTraceID(traced)
	require.Len(t, traceID, 32)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))

	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 123)))
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	_, ok := UserFromContext(ctx)
	assert.False(t, ok)

	_, ok = UserFromContext(WithUser(ctx, nil))
	assert.False(t, ok, "a nil user is anonymous")

	user := &domain.User{ID: uuid.New(), Username: "alice"}
	got, ok := UserFromContext(WithUser(ctx, user))
	require.True(t, ok)
	assert.Same(t, user, got)
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()
	_, ok := ClaimsFromContext(ctx)
	assert.False(t, ok)

	claims := &auth.Claims{ID: "jti-1"}
	got, ok := ClaimsFromContext(WithClaims(ctx, claims))
	require.True(t, ok)
	assert.Equal(t, "jti-1", got.ID)
}
