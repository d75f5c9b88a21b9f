package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/domain/ordering"
)

// TaskFilter narrows GetByBoard. Nil fields do not filter.
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssignedTo *uuid.UUID
}

// TaskStore defines the interface for task data persistence.
//
// Position bookkeeping is the caller's job: Create stores the position it
// is given, and SetPositions rewrites positions in bulk. Callers must hold
// LockBoard inside a transaction while doing so.
type TaskStore interface {
	// Create saves a new task. Returns ErrInvalidEntity when the board or
	// assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task. Returns ErrTaskNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks ordered by (created_at, id).
	List(ctx context.Context, page Page) ([]*domain.Task, error)

	// GetByBoard returns a board's tasks ordered by status then position.
	GetByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)

	// GetByStatus returns one column of a board ordered by position.
	GetByStatus(ctx context.Context, boardID uuid.UUID, status domain.TaskStatus) ([]*domain.Task, error)

	// Filter is GetByBoard with optional status, priority and assignee filters.
	Filter(ctx context.Context, boardID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Search returns tasks whose title or description contains query,
	// case-insensitively. A nil boardID searches every board.
	Search(ctx context.Context, query string, boardID *uuid.UUID) ([]*domain.Task, error)

	// Update applies the content fields of patch to existing and persists
	// them. Status and position are not written.
	Update(ctx context.Context, existing *domain.Task, patch domain.TaskPatch) error

	// Assign sets or clears the assignee. Returns ErrInvalidEntity when
	// the user does not exist.
	Assign(ctx context.Context, id uuid.UUID, assignee *uuid.UUID) (*domain.Task, error)

	// Delete removes a task. Returns ErrTaskNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// LockBoard takes a row lock on the board for the rest of the
	// transaction. Returns ErrBoardNotFound if the board does not exist.
	LockBoard(ctx context.Context, boardID uuid.UUID) error

	// ListColumn returns the placement of every task in one column.
	ListColumn(ctx context.Context, boardID uuid.UUID, status domain.TaskStatus) ([]ordering.Entry, error)

	// SetPositions writes the status and position of each entry.
	SetPositions(ctx context.Context, changes []ordering.Entry) error

	// WithTx returns a TaskStore that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
