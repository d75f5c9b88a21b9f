package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// BoardInput carries the fields of a new board. A nil OwnerID makes the
// acting user the owner.
type BoardInput struct {
	Name        string
	Description string
	IsPublic    bool
	OwnerID     *uuid.UUID
}

// BoardSummary is a board with its task count computed at read time.
type BoardSummary struct {
	Board      *domain.Board
	TasksCount int
}

// BoardDetail is a board with its tasks ordered by status then position.
type BoardDetail struct {
	Board *domain.Board
	Tasks []*domain.Task
}

// BoardService provides board operations.
type BoardService interface {
	// CreateBoard creates a board. Only admins may create boards for
	// another user; the owner must exist (store.ErrInvalidEntity otherwise).
	CreateBoard(ctx context.Context, actor *domain.User, input BoardInput) (*BoardSummary, error)

	// ListBoards returns boards visible to viewer, optionally restricted
	// to one owner. A nil viewer only sees public boards.
	ListBoards(ctx context.Context, viewer *domain.User, ownerID *uuid.UUID, page store.Page) ([]*BoardSummary, error)

	// GetBoard returns a board with its tasks. Boards hidden from viewer
	// are reported as store.ErrBoardNotFound.
	GetBoard(ctx context.Context, viewer *domain.User, boardID uuid.UUID) (*BoardDetail, error)

	// UpdateBoard applies patch. Only the owner or an admin may do this.
	UpdateBoard(ctx context.Context, actor *domain.User, boardID uuid.UUID, patch domain.BoardPatch) (*BoardSummary, error)

	// DeleteBoard removes a board and its tasks, returning how many tasks
	// were removed. Only the owner or an admin may do this.
	DeleteBoard(ctx context.Context, actor *domain.User, boardID uuid.UUID) (int, error)
}

// BoardServiceImpl implements the BoardService interface
type BoardServiceImpl struct {
	boards store.BoardStore
	tasks  store.TaskStore
	tx     store.TxRunner
	logger *slog.Logger
}

var _ BoardService = (*BoardServiceImpl)(nil)

// NewBoardService creates a new BoardService
func NewBoardService(
	boards store.BoardStore,
	tasks store.TaskStore,
	tx store.TxRunner,
	logger *slog.Logger,
) (*BoardServiceImpl, error) {
	if boards == nil {
		return nil, errors.New("board store cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if tx == nil {
		return nil, errors.New("transaction runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardServiceImpl{
		boards: boards,
		tasks:  tasks,
		tx:     tx,
		logger: logger.With("component", "board_service"),
	}, nil
}

func canManage(actor *domain.User, board *domain.Board) bool {
	return actor != nil && (actor.IsAdmin() || board.OwnerID == actor.ID)
}

// CreateBoard implements BoardService.
func (s *BoardServiceImpl) CreateBoard(ctx context.Context, actor *domain.User, input BoardInput) (*BoardSummary, error) {
	ownerID := actor.ID
	if input.OwnerID != nil {
		ownerID = *input.OwnerID
	}
	if ownerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwned
	}

	board, err := domain.NewBoard(input.Name, input.Description, input.IsPublic, ownerID)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.boards.WithTx(tx).Create(ctx, board)
	})
	if err != nil {
		return nil, s.classify(ctx, "create", board.ID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("board created",
		"board_id", board.ID,
		"owner_id", ownerID)
	return &BoardSummary{Board: board}, nil
}

func (s *BoardServiceImpl) summarize(ctx context.Context, boards []*domain.Board) ([]*BoardSummary, error) {
	out := make([]*BoardSummary, 0, len(boards))
	for _, b := range boards {
		n, err := s.boards.CountTasks(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &BoardSummary{Board: b, TasksCount: n})
	}
	return out, nil
}

// ListBoards implements BoardService.
func (s *BoardServiceImpl) ListBoards(
	ctx context.Context,
	viewer *domain.User,
	ownerID *uuid.UUID,
	page store.Page,
) ([]*BoardSummary, error) {
	var (
		boards []*domain.Board
		err    error
	)
	switch {
	case ownerID != nil:
		boards, err = s.boards.GetByOwner(ctx, *ownerID, viewer == nil, page)
	case viewer == nil:
		boards, err = s.boards.ListPublic(ctx, page)
	default:
		boards, err = s.boards.List(ctx, page)
	}
	if err != nil {
		return nil, s.classify(ctx, "list", uuid.Nil, err)
	}

	summaries, err := s.summarize(ctx, boards)
	if err != nil {
		return nil, s.classify(ctx, "list", uuid.Nil, err)
	}
	return summaries, nil
}

// GetBoard implements BoardService.
func (s *BoardServiceImpl) GetBoard(ctx context.Context, viewer *domain.User, boardID uuid.UUID) (*BoardDetail, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, s.classify(ctx, "get", boardID, err)
	}
	if !board.VisibleTo(viewer) {
		return nil, store.ErrBoardNotFound
	}

	tasks, err := s.tasks.GetByBoard(ctx, boardID)
	if err != nil {
		return nil, s.classify(ctx, "get", boardID, err)
	}
	return &BoardDetail{Board: board, Tasks: tasks}, nil
}

// UpdateBoard implements BoardService.
func (s *BoardServiceImpl) UpdateBoard(
	ctx context.Context,
	actor *domain.User,
	boardID uuid.UUID,
	patch domain.BoardPatch,
) (*BoardSummary, error) {
	var summary *BoardSummary
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.boards.WithTx(tx)

		board, err := txStore.GetByID(ctx, boardID)
		if err != nil {
			return err
		}
		if !canManage(actor, board) {
			return ErrNotOwned
		}
		if err := txStore.Update(ctx, board, patch); err != nil {
			return err
		}
		n, err := txStore.CountTasks(ctx, boardID)
		if err != nil {
			return err
		}
		summary = &BoardSummary{Board: board, TasksCount: n}
		return nil
	})
	if err != nil {
		return nil, s.classify(ctx, "update", boardID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("board updated", "board_id", boardID)
	return summary, nil
}

// DeleteBoard implements BoardService.
func (s *BoardServiceImpl) DeleteBoard(ctx context.Context, actor *domain.User, boardID uuid.UUID) (int, error) {
	var deleted int
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.boards.WithTx(tx)

		board, err := txStore.GetByID(ctx, boardID)
		if err != nil {
			return err
		}
		if !canManage(actor, board) {
			return ErrNotOwned
		}
		if deleted, err = txStore.CountTasks(ctx, boardID); err != nil {
			return err
		}
		return txStore.Delete(ctx, boardID)
	})
	if err != nil {
		return 0, s.classify(ctx, "delete", boardID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("board deleted",
		"board_id", boardID,
		"deleted_tasks_count", deleted)
	return deleted, nil
}

func (s *BoardServiceImpl) classify(ctx context.Context, operation string, boardID uuid.UUID, err error) error {
	if isExpected(err) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("board operation failed",
		"operation", operation,
		"error", err,
		"board_id", boardID)
	return wrapErr("board", operation, err)
}
