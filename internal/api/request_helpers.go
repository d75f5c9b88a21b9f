package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// getQueryUUID parses an optional UUID query parameter. A missing
// parameter yields nil.
func getQueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return &id, nil
}

// parsePage reads skip and limit. Skip must be >= 0 and limit in
// [1, store.MaxLimit]; out of range values are rejected, not clamped.
func parsePage(r *http.Request) (store.Page, error) {
	page := store.Page{Limit: store.DefaultLimit}
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return page, domain.NewValidationError("skip", "must be a non-negative integer", domain.ErrValidation)
		}
		page.Skip = skip
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > store.MaxLimit {
			return page, domain.NewValidationError("limit",
				fmt.Sprintf("must be between 1 and %d", store.MaxLimit), domain.ErrValidation)
		}
		page.Limit = limit
	}
	return page, nil
}

// currentUser returns the authenticated user or nil for anonymous callers.
func currentUser(r *http.Request) *domain.User {
	user, _ := shared.UserFromContext(r.Context())
	return user
}

// decodeAndValidate decodes the body into v and runs its validate tags.
// Decode failures other than an empty body are reported as malformed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) error {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return err
		}
		return fmt.Errorf("%w: %w", errMalformedRequest, err)
	}
	return shared.ValidateRequest(v)
}
