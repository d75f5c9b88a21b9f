package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrUserNotFound", err: ErrUserNotFound, expected: true},
		{name: "wrapped ErrBoardNotFound", err: fmt.Errorf("get board: %w", ErrBoardNotFound), expected: true},
		{name: "ErrTaskNotFound in StoreError", err: NewStoreError("task", "get", "missing", ErrTaskNotFound), expected: true},
		{name: "duplicate is not not-found", err: ErrUsernameExists, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsNotFoundError(tc.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrUsernameExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrEmailExists)))
	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestEntityErrorsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrUsernameExists, ErrEmailExists)
	assert.NotErrorIs(t, ErrBoardNotFound, ErrTaskNotFound)
	assert.Equal(t, "entity not found: board", ErrBoardNotFound.Error())
}

func TestStoreError(t *testing.T) {
	wrapped := NewStoreError("task", "move", "set positions", ErrTaskNotFound)
	assert.Equal(t, "move operation on task failed: set positions: entity not found: task", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrTaskNotFound)

	bare := NewStoreError("board", "lock", "no rows", nil)
	assert.Equal(t, "lock operation on board failed: no rows", bare.Error())
	assert.NoError(t, bare.Unwrap())
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Skip: 0, Limit: DefaultLimit}, Page{Skip: -4}.Normalize())
	assert.Equal(t, Page{Skip: 10, Limit: MaxLimit}, Page{Skip: 10, Limit: MaxLimit + 1}.Normalize())
	assert.Equal(t, Page{Skip: 1, Limit: 5}, Page{Skip: 1, Limit: 5}.Normalize())
}

func TestMissingReference(t *testing.T) {
	id := uuid.New()
	err := MissingReference("board", id)

	assert.ErrorIs(t, err, ErrInvalidEntity)
	assert.NotErrorIs(t, err, ErrNotFound)

	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "board", refErr.Entity)
	assert.Equal(t, id.String(), refErr.ID)
	assert.Contains(t, err.Error(), "board with ID "+id.String())
}
