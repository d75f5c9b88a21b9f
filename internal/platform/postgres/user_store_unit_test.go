package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreCreateDuplicates(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "username", constraint: usersUsernameConstraint, want: store.ErrUsernameExists},
		{name: "email", constraint: usersEmailConstraint, want: store.ErrEmailExists},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			s := NewPostgresUserStore(db, nil)

			user, err := domain.NewUser("johndoe", "john@example.com", "password123", "")
			require.NoError(t, err)
			user.HashedPassword = "$2a$04$hash"

			mock.ExpectExec(`INSERT INTO users`).
				WillReturnError(newPgError(uniqueViolationCode, tc.constraint))

			err = s.Create(context.Background(), user)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, user.Password, "plaintext must be cleared before insert")
		})
	}
}

func TestUserStoreCreateRequiresHash(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	user, err := domain.NewUser("johndoe", "", "password123", "")
	require.NoError(t, err)

	err = NewPostgresUserStore(db, nil).Create(context.Background(), user)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestUserStoreEmptyEmailStoredAsNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	user, err := domain.NewUser("janesmith", "", "password123", "")
	require.NoError(t, err)
	user.HashedPassword = "$2a$04$hash"

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(user.ID, "janesmith", nil, "", user.HashedPassword, true, "user",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresUserStore(db, nil).Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}
