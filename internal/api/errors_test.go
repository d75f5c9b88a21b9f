package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/phrazzld/kanban-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"revoked token", auth.ErrRevokedToken, http.StatusUnauthorized},
		{"bad credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive user", auth.ErrInactiveUser, http.StatusForbidden},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"admin required", fmt.Errorf("wrapped: %w", service.ErrAdminRequired), http.StatusForbidden},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped board not found", &service.ServiceError{Service: "board", Operation: "get", Err: store.ErrBoardNotFound}, http.StatusNotFound},
		{"username exists", store.ErrUsernameExists, http.StatusConflict},
		{"position conflict at commit", fmt.Errorf("%w: commit: %w", store.ErrTransactionFailed, store.ErrPositionConflict), http.StatusConflict},
		{"validation", domain.NewValidationError("title", "cannot be empty", nil), http.StatusBadRequest},
		{"missing reference", store.MissingReference("board", uuid.New()), http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"malformed", fmt.Errorf("%w: eof", errMalformedRequest), http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"credentials", auth.ErrInvalidCredentials, "Incorrect username or password"},
		{"user not found", store.ErrUserNotFound, "User not found"},
		{"email exists", fmt.Errorf("create: %w", store.ErrEmailExists), "Email already exists"},
		{"missing user", store.MissingReference("user", stringer("42")), "User does not exist"},
		{"field", domain.NewValidationError("status", "must be one of todo, in_progress, done", nil),
			"Invalid status: must be one of todo, in_progress, done"},
		{"invalid entity", store.ErrInvalidEntity, "Invalid entity data"},
		{"position conflict", store.ErrPositionConflict, "Task positions changed during the request, please retry"},
		{"internal details hidden", errors.New("pq: password authentication failed for user kanban"),
			"An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}
	err := shared.ValidateRequest(payload{Email: "nope"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Invalid email: invalid email format", SanitizeValidationError(verrs))
	assert.Equal(t, "Validation error", SanitizeValidationError(nil))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("unauthorized sets challenge", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), auth.ErrExpiredToken)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Contains(t, rec.Body.String(), "Token expired")
	})

	t.Run("internal error carries trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(shared.SetTraceID(req.Context()))
		rec := httptest.NewRecorder()

		HandleAPIError(rec, req, errors.New("db exploded"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "exploded")
		assert.Contains(t, rec.Body.String(), shared.GetTraceID(req.Context()))
	})
}
