package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/domain/ordering"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/store"
)

const taskColumns = `id, title, description, status, priority, position, board_id, assigned_to, due_date, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task       domain.Task
		status     string
		priority   string
		assignedTo uuid.NullUUID
		dueDate    sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.Position,
		&task.BoardID,
		&assignedTo,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if assignedTo.Valid {
		id := assignedTo.UUID
		task.AssignedTo = &id
	}
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	return &task, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// mapTaskReferenceError turns FK violations on tasks into ErrInvalidEntity
// naming the missing board or user.
func mapTaskReferenceError(err error, boardID uuid.UUID, assignee *uuid.UUID) error {
	if !IsForeignKeyViolation(err) {
		return MapError(err)
	}
	switch constraintName(err) {
	case tasksBoardConstraint:
		return store.MissingReference("board", boardID)
	case tasksAssigneeConstraint:
		if assignee != nil {
			return store.MissingReference("user", *assignee)
		}
	}
	return MapError(err)
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.Position,
		task.BoardID,
		nullableUUID(task.AssignedTo),
		nullableTime(task.DueDate),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Warn("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("board_id", task.BoardID.String()))
		return mapTaskReferenceError(err, task.BoardID, task.AssignedTo)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("board_id", task.BoardID.String()),
		slog.String("status", string(task.Status)),
		slog.Int("position", task.Position))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}
	return task, nil
}

func (s *PostgresTaskStore) query(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query tasks",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// statusOrder sorts columns as todo, in_progress, done rather than alphabetically.
const statusOrder = `CASE status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 ELSE 2 END`

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, page store.Page) ([]*domain.Task, error) {
	page = page.Normalize()
	return s.query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, page.Limit, page.Skip)
}

// GetByBoard implements store.TaskStore.GetByBoard
func (s *PostgresTaskStore) GetByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	return s.Filter(ctx, boardID, store.TaskFilter{})
}

// GetByStatus implements store.TaskStore.GetByStatus
func (s *PostgresTaskStore) GetByStatus(
	ctx context.Context,
	boardID uuid.UUID,
	status domain.TaskStatus,
) ([]*domain.Task, error) {
	return s.Filter(ctx, boardID, store.TaskFilter{Status: &status})
}

// Filter implements store.TaskStore.Filter
func (s *PostgresTaskStore) Filter(
	ctx context.Context,
	boardID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	conditions := []string{"board_id = $1"}
	args := []any{boardID}

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.Status != nil {
		add("status", string(*filter.Status))
	}
	if filter.Priority != nil {
		add("priority", string(*filter.Priority))
	}
	if filter.AssignedTo != nil {
		add("assigned_to", *filter.AssignedTo)
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY ` + statusOrder + `, position, id
	`
	return s.query(ctx, query, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search implements store.TaskStore.Search
func (s *PostgresTaskStore) Search(ctx context.Context, query string, boardID *uuid.UUID) ([]*domain.Task, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	if boardID != nil {
		return s.query(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			WHERE board_id = $2 AND (title ILIKE $1 OR description ILIKE $1)
			ORDER BY `+statusOrder+`, position, id
		`, pattern, *boardID)
	}
	return s.query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE title ILIKE $1 OR description ILIKE $1
		ORDER BY created_at, id
	`, pattern)
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, existing *domain.Task, patch domain.TaskPatch) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	updated := *existing
	if err := patch.Apply(&updated); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, due_date = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		updated.Title,
		updated.Description,
		string(updated.Priority),
		nullableTime(updated.DueDate),
		updated.UpdatedAt,
		updated.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", existing.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	*existing = updated
	log.Info("task updated successfully", slog.String("task_id", existing.ID.String()))
	return nil
}

// Assign implements store.TaskStore.Assign
func (s *PostgresTaskStore) Assign(ctx context.Context, id uuid.UUID, assignee *uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET assigned_to = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + taskColumns
	task, err := scanTask(s.db.QueryRowContext(ctx, query, nullableUUID(assignee), time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Warn("failed to assign task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, mapTaskReferenceError(err, uuid.Nil, assignee)
	}

	log.Info("task assignment changed", slog.String("task_id", id.String()))
	return task, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}
	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// LockBoard implements store.TaskStore.LockBoard
func (s *PostgresTaskStore) LockBoard(ctx context.Context, boardID uuid.UUID) error {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM boards WHERE id = $1 FOR UPDATE`, boardID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrBoardNotFound
		}
		return MapError(err)
	}
	return nil
}

// ListColumn implements store.TaskStore.ListColumn
func (s *PostgresTaskStore) ListColumn(
	ctx context.Context,
	boardID uuid.UUID,
	status domain.TaskStatus,
) ([]ordering.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, position
		FROM tasks
		WHERE board_id = $1 AND status = $2
		ORDER BY position, id
	`, boardID, string(status))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]ordering.Entry, 0)
	for rows.Next() {
		var (
			entry  ordering.Entry
			status string
		)
		if err := rows.Scan(&entry.ID, &status, &entry.Position); err != nil {
			return nil, MapError(err)
		}
		entry.Status = domain.TaskStatus(status)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

// SetPositions implements store.TaskStore.SetPositions
func (s *PostgresTaskStore) SetPositions(ctx context.Context, changes []ordering.Entry) error {
	if len(changes) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	stmt, err := s.db.PrepareContext(ctx,
		`UPDATE tasks SET status = $1, position = $2, updated_at = $3 WHERE id = $4`)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, c := range changes {
		result, err := stmt.ExecContext(ctx, string(c.Status), c.Position, now, c.ID)
		if err != nil {
			log.Error("failed to set task position",
				slog.String("error", err.Error()),
				slog.String("task_id", c.ID.String()))
			return store.NewStoreError("task", "reposition", "update failed", MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return store.NewStoreError("task", "reposition", c.ID.String(), err)
		}
	}

	log.Debug("task positions updated", slog.Int("count", len(changes)))
	return nil
}
