package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Board is a named collection of tasks owned by one user.
type Board struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBoard creates a board owned by ownerID.
func NewBoard(name, description string, isPublic bool, ownerID uuid.UUID) (*Board, error) {
	now := time.Now().UTC()
	board := &Board{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		IsPublic:    isPublic,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}
	return board, nil
}

// Validate checks if the Board has valid data.
func (b *Board) Validate() error {
	if b.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if b.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "cannot be empty", ErrInvalidID)
	}
	if b.Name == "" {
		return validationErr("name", "cannot be empty")
	}
	if len(b.Name) > 100 {
		return validationErr("name", "must be at most 100 characters")
	}
	if len(b.Description) > 1000 {
		return validationErr("description", "must be at most 1000 characters")
	}
	return nil
}

// VisibleTo reports whether the board may be shown to user. A nil user is
// an anonymous caller and only sees public boards.
func (b *Board) VisibleTo(user *User) bool {
	return b.IsPublic || user != nil
}

// BoardPatch lists the mutable board fields. Nil fields are left unchanged.
type BoardPatch struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// Apply copies the set fields onto b and validates the result.
func (p BoardPatch) Apply(b *Board) error {
	if p.Name != nil {
		b.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.IsPublic != nil {
		b.IsPublic = *p.IsPublic
	}
	b.UpdatedAt = time.Now().UTC()
	return b.Validate()
}
