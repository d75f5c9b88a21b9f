package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

const boardColumns = `id, name, description, is_public, owner_id, created_at, updated_at`

// PostgresBoardStore implements the store.BoardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBoardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBoardStore creates a new PostgreSQL implementation of the BoardStore interface.
func NewPostgresBoardStore(db store.DBTX, logger *slog.Logger) *PostgresBoardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBoardStore{
		db:     db,
		logger: logger.With(slog.String("component", "board_store")),
	}
}

var _ store.BoardStore = (*PostgresBoardStore)(nil)

// WithTx implements store.BoardStore.WithTx
func (s *PostgresBoardStore) WithTx(tx *sql.Tx) store.BoardStore {
	return &PostgresBoardStore{db: tx, logger: s.logger}
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var board domain.Board
	err := row.Scan(
		&board.ID,
		&board.Name,
		&board.Description,
		&board.IsPublic,
		&board.OwnerID,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// Create implements store.BoardStore.Create
func (s *PostgresBoardStore) Create(ctx context.Context, board *domain.Board) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := board.Validate(); err != nil {
		log.Warn("board validation failed during create",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return err
	}

	query := `
		INSERT INTO boards (` + boardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		board.ID,
		board.Name,
		board.Description,
		board.IsPublic,
		board.OwnerID,
		board.CreatedAt,
		board.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) && constraintName(err) == boardsOwnerConstraint {
			log.Warn("board owner does not exist",
				slog.String("board_id", board.ID.String()),
				slog.String("owner_id", board.OwnerID.String()))
			return store.MissingReference("user", board.OwnerID)
		}
		log.Error("failed to create board",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID.String()))
		return MapError(err)
	}

	log.Info("board created successfully",
		slog.String("board_id", board.ID.String()),
		slog.String("owner_id", board.OwnerID.String()))
	return nil
}

// GetByID implements store.BoardStore.GetByID
func (s *PostgresBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	query := `SELECT ` + boardColumns + ` FROM boards WHERE id = $1`
	board, err := scanBoard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBoardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get board by ID",
			slog.String("error", err.Error()),
			slog.String("board_id", id.String()))
		return nil, MapError(err)
	}
	return board, nil
}

func (s *PostgresBoardStore) list(ctx context.Context, where string, page store.Page, args ...any) ([]*domain.Board, error) {
	page = page.Normalize()
	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM boards
		%s
		ORDER BY created_at, id
		LIMIT $%d OFFSET $%d
	`, boardColumns, where, n+1, n+2)
	args = append(args, page.Limit, page.Skip)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list boards",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	boards := make([]*domain.Board, 0)
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return boards, nil
}

// List implements store.BoardStore.List
func (s *PostgresBoardStore) List(ctx context.Context, page store.Page) ([]*domain.Board, error) {
	return s.list(ctx, "", page)
}

// ListPublic implements store.BoardStore.ListPublic
func (s *PostgresBoardStore) ListPublic(ctx context.Context, page store.Page) ([]*domain.Board, error) {
	return s.list(ctx, "WHERE is_public", page)
}

// GetByOwner implements store.BoardStore.GetByOwner
func (s *PostgresBoardStore) GetByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	publicOnly bool,
	page store.Page,
) ([]*domain.Board, error) {
	where := "WHERE owner_id = $1"
	if publicOnly {
		where += " AND is_public"
	}
	return s.list(ctx, where, page, ownerID)
}

// CountTasks implements store.BoardStore.CountTasks
func (s *PostgresBoardStore) CountTasks(ctx context.Context, boardID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE board_id = $1`, boardID).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// Update implements store.BoardStore.Update
func (s *PostgresBoardStore) Update(ctx context.Context, existing *domain.Board, patch domain.BoardPatch) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	updated := *existing
	if err := patch.Apply(&updated); err != nil {
		return err
	}

	query := `
		UPDATE boards
		SET name = $1, description = $2, is_public = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		updated.Name, updated.Description, updated.IsPublic, updated.UpdatedAt, updated.ID)
	if err != nil {
		log.Error("failed to update board",
			slog.String("error", err.Error()),
			slog.String("board_id", existing.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrBoardNotFound); err != nil {
		return err
	}

	*existing = updated
	log.Info("board updated successfully", slog.String("board_id", existing.ID.String()))
	return nil
}

// Delete implements store.BoardStore.Delete
func (s *PostgresBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete board",
			slog.String("error", err.Error()),
			slog.String("board_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrBoardNotFound); err != nil {
		return err
	}
	log.Info("board deleted", slog.String("board_id", id.String()))
	return nil
}
