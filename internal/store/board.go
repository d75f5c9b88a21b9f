package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// BoardStore defines the interface for board data persistence.
type BoardStore interface {
	// Create saves a new board. Returns ErrInvalidEntity when the owner
	// does not exist.
	Create(ctx context.Context, board *domain.Board) error

	// GetByID retrieves a board. Returns ErrBoardNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// List returns boards ordered by (created_at, id).
	List(ctx context.Context, page Page) ([]*domain.Board, error)

	// ListPublic is List restricted to public boards.
	ListPublic(ctx context.Context, page Page) ([]*domain.Board, error)

	// GetByOwner returns the boards owned by ownerID ordered by (created_at, id).
	// When publicOnly is set, private boards are excluded.
	GetByOwner(ctx context.Context, ownerID uuid.UUID, publicOnly bool, page Page) ([]*domain.Board, error)

	// CountTasks returns the number of tasks on a board.
	CountTasks(ctx context.Context, boardID uuid.UUID) (int, error)

	// Update applies patch to existing and persists the result.
	Update(ctx context.Context, existing *domain.Board, patch domain.BoardPatch) error

	// Delete removes a board and, by cascade, all of its tasks.
	// Returns ErrBoardNotFound if the board does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a BoardStore that uses the provided transaction.
	WithTx(tx *sql.Tx) BoardStore
}
