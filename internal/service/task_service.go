package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/domain/ordering"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

// TaskInput carries the fields of a new task. Empty Status and Priority
// default to todo and medium; a nil Position appends to the column.
type TaskInput struct {
	BoardID     uuid.UUID
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	AssignedTo  *uuid.UUID
	DueDate     *time.Time
	Position    *int
}

// TaskService provides task operations. Every operation that changes a
// position locks the board first and keeps each column dense.
type TaskService interface {
	CreateTask(ctx context.Context, input TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks returns a board's tasks, optionally filtered. Returns
	// store.ErrBoardNotFound when the board does not exist.
	ListTasks(ctx context.Context, boardID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error)

	// SearchTasks matches query against titles and descriptions,
	// case-insensitively, across all boards or within one.
	SearchTasks(ctx context.Context, query string, boardID *uuid.UUID) ([]*domain.Task, error)

	// UpdateTask patches content fields and, when status or position
	// differ from the current ones, moves the task. A status change with
	// no position appends the task to the new column.
	UpdateTask(ctx context.Context, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// MoveTask places the task at position in the status column. Moving a
	// task onto its current placement writes nothing.
	MoveTask(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus, position int) (*domain.Task, error)

	// AssignTask sets or, with a nil assignee, clears the assignee. An
	// unknown assignee is a validation failure (store.ErrInvalidEntity).
	AssignTask(ctx context.Context, taskID uuid.UUID, assignee *uuid.UUID) (*domain.Task, error)

	// DeleteTask removes the task and closes the gap in its column.
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	tasks  store.TaskStore
	boards store.BoardStore
	users  store.UserStore
	tx     store.TxRunner
	logger *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService
func NewTaskService(
	tasks store.TaskStore,
	boards store.BoardStore,
	users store.UserStore,
	tx store.TxRunner,
	logger *slog.Logger,
) (*TaskServiceImpl, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if boards == nil {
		return nil, errors.New("board store cannot be nil")
	}
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if tx == nil {
		return nil, errors.New("transaction runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:  tasks,
		boards: boards,
		users:  users,
		tx:     tx,
		logger: logger.With("component", "task_service"),
	}, nil
}

// CreateTask implements TaskService.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, input TaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(
		input.BoardID,
		input.Title,
		input.Description,
		input.Status,
		input.Priority,
		input.AssignedTo,
		input.DueDate,
	)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		if err := txTasks.LockBoard(ctx, task.BoardID); err != nil {
			if errors.Is(err, store.ErrBoardNotFound) {
				return store.MissingReference("board", task.BoardID)
			}
			return err
		}
		column, err := txTasks.ListColumn(ctx, task.BoardID, task.Status)
		if err != nil {
			return err
		}

		plan := ordering.Insert(column, task.ID, task.Status, input.Position)
		task.Position = plan.Placed.Position
		if err := txTasks.SetPositions(ctx, plan.Changes); err != nil {
			return err
		}
		return txTasks.Create(ctx, task)
	})
	if err != nil {
		return nil, s.classify(ctx, "create", task.ID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task created",
		"task_id", task.ID,
		"board_id", task.BoardID,
		"status", task.Status,
		"position", task.Position)
	return task, nil
}

// GetTask implements TaskService.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.classify(ctx, "get", taskID, err)
	}
	return task, nil
}

// ListTasks implements TaskService.
func (s *TaskServiceImpl) ListTasks(
	ctx context.Context,
	boardID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	if _, err := s.boards.GetByID(ctx, boardID); err != nil {
		return nil, s.classify(ctx, "list", uuid.Nil, err)
	}
	tasks, err := s.tasks.Filter(ctx, boardID, filter)
	if err != nil {
		return nil, s.classify(ctx, "list", uuid.Nil, err)
	}
	return tasks, nil
}

// SearchTasks implements TaskService.
func (s *TaskServiceImpl) SearchTasks(ctx context.Context, query string, boardID *uuid.UUID) ([]*domain.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("q", "cannot be empty", nil)
	}
	if boardID != nil {
		if _, err := s.boards.GetByID(ctx, *boardID); err != nil {
			return nil, s.classify(ctx, "search", uuid.Nil, err)
		}
	}
	tasks, err := s.tasks.Search(ctx, query, boardID)
	if err != nil {
		return nil, s.classify(ctx, "search", uuid.Nil, err)
	}
	return tasks, nil
}

// lockTask reads the task, locks its board and reads the task again, since
// another transaction may have moved it while this one waited for the lock.
func lockTask(ctx context.Context, tasks store.TaskStore, taskID uuid.UUID) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := tasks.LockBoard(ctx, task.BoardID); err != nil {
		return nil, err
	}
	return tasks.GetByID(ctx, taskID)
}

// move plans and writes a move of task. task is updated in place.
func move(
	ctx context.Context,
	tasks store.TaskStore,
	task *domain.Task,
	status domain.TaskStatus,
	position *int,
) (int, error) {
	source, err := tasks.ListColumn(ctx, task.BoardID, task.Status)
	if err != nil {
		return 0, err
	}
	destination := source
	if status != task.Status {
		if destination, err = tasks.ListColumn(ctx, task.BoardID, status); err != nil {
			return 0, err
		}
	}

	target := task.Position
	switch {
	case position != nil:
		target = *position
	case status != task.Status:
		target = len(destination)
	}

	plan, err := ordering.Move(source, destination, task.ID, status, target)
	if err != nil {
		return 0, err
	}
	if len(plan.Changes) > 0 {
		if err := tasks.SetPositions(ctx, plan.Changes); err != nil {
			return 0, err
		}
	}
	task.Status = plan.Placed.Status
	task.Position = plan.Placed.Position
	return len(plan.Changes), nil
}

// MoveTask implements TaskService.
func (s *TaskServiceImpl) MoveTask(
	ctx context.Context,
	taskID uuid.UUID,
	status domain.TaskStatus,
	position int,
) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "must be one of todo, in_progress, done", nil)
	}

	var (
		task    *domain.Task
		written int
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		if task, err = lockTask(ctx, txTasks, taskID); err != nil {
			return err
		}
		written, err = move(ctx, txTasks, task, status, &position)
		return err
	})
	if err != nil {
		return nil, s.classify(ctx, "move", taskID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task moved",
		"task_id", taskID,
		"status", task.Status,
		"position", task.Position,
		"rows_written", written)
	return task, nil
}

// UpdateTask implements TaskService.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, domain.NewValidationError("status", "must be one of todo, in_progress, done", nil)
	}

	var task *domain.Task
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		if task, err = lockTask(ctx, txTasks, taskID); err != nil {
			return err
		}
		if patch.ChangesContent() {
			if err := txTasks.Update(ctx, task, patch); err != nil {
				return err
			}
		}
		if !patch.MovesTask(task) {
			return nil
		}
		status := task.Status
		if patch.Status != nil {
			status = *patch.Status
		}
		_, err = move(ctx, txTasks, task, status, patch.Position)
		return err
	})
	if err != nil {
		return nil, s.classify(ctx, "update", taskID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task updated", "task_id", taskID)
	return task, nil
}

// AssignTask implements TaskService.
func (s *TaskServiceImpl) AssignTask(ctx context.Context, taskID uuid.UUID, assignee *uuid.UUID) (*domain.Task, error) {
	if assignee != nil {
		if _, err := s.users.GetByID(ctx, *assignee); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return nil, store.MissingReference("user", *assignee)
			}
			return nil, s.classify(ctx, "assign", taskID, err)
		}
	}

	task, err := s.tasks.Assign(ctx, taskID, assignee)
	if err != nil {
		return nil, s.classify(ctx, "assign", taskID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task assignment changed",
		"task_id", taskID,
		"assigned", assignee != nil)
	return task, nil
}

// DeleteTask implements TaskService.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := lockTask(ctx, txTasks, taskID)
		if err != nil {
			return err
		}
		column, err := txTasks.ListColumn(ctx, task.BoardID, task.Status)
		if err != nil {
			return err
		}
		plan, err := ordering.Remove(column, taskID)
		if err != nil {
			return err
		}
		if err := txTasks.Delete(ctx, taskID); err != nil {
			return err
		}
		return txTasks.SetPositions(ctx, plan.Changes)
	})
	if err != nil {
		return s.classify(ctx, "delete", taskID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted", "task_id", taskID)
	return nil
}

func (s *TaskServiceImpl) classify(ctx context.Context, operation string, taskID uuid.UUID, err error) error {
	if isExpected(err) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("task operation failed",
		"operation", operation,
		"error", err,
		"task_id", taskID)
	return wrapErr("task", operation, err)
}
