package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/domain/ordering"
	"github.com/phrazzld/kanban-api/internal/store"
)

// MockTaskStore implements store.TaskStore over a Memory.
type MockTaskStore struct {
	mem *Memory

	// SetPositionsFn, when set, replaces SetPositions. Tests use it to
	// inject failures in the middle of a move.
	SetPositionsFn func(ctx context.Context, changes []ordering.Entry) error
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *MockTaskStore) WithTx(*sql.Tx) store.TaskStore { return s }

func (s *MockTaskStore) checkRefs(boardID uuid.UUID, assignee *uuid.UUID) error {
	if boardID != uuid.Nil {
		if _, ok := s.mem.boards[boardID]; !ok {
			return store.MissingReference("board", boardID)
		}
	}
	if assignee != nil {
		if _, ok := s.mem.users[*assignee]; !ok {
			return store.MissingReference("user", *assignee)
		}
	}
	return nil
}

// Create implements store.TaskStore.
func (s *MockTaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if err := s.checkRefs(task.BoardID, task.AssignedTo); err != nil {
		return err
	}
	if _, exists := s.mem.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	s.mem.tasks[task.ID] = cloneTask(*task)
	return nil
}

// GetByID implements store.TaskStore.
func (s *MockTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	t, ok := s.mem.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (s *MockTaskStore) collect(match func(domain.Task) bool) []*domain.Task {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	out := make([]*domain.Task, 0)
	for _, t := range s.mem.tasks {
		if match(t) {
			t = cloneTask(t)
			out = append(out, &t)
		}
	}
	return out
}

func statusRank(s domain.TaskStatus) int {
	for i, status := range domain.TaskStatuses {
		if status == s {
			return i
		}
	}
	return len(domain.TaskStatuses)
}

func sortByColumn(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID.String() < b.ID.String()
	})
}

func sortByCreation(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return createdBefore(tasks[i].CreatedAt, tasks[i].ID, tasks[j].CreatedAt, tasks[j].ID)
	})
}

// List implements store.TaskStore.
func (s *MockTaskStore) List(_ context.Context, page store.Page) ([]*domain.Task, error) {
	tasks := s.collect(func(domain.Task) bool { return true })
	sortByCreation(tasks)
	return paginate(tasks, page), nil
}

// GetByBoard implements store.TaskStore.
func (s *MockTaskStore) GetByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	return s.Filter(ctx, boardID, store.TaskFilter{})
}

// GetByStatus implements store.TaskStore.
func (s *MockTaskStore) GetByStatus(
	ctx context.Context,
	boardID uuid.UUID,
	status domain.TaskStatus,
) ([]*domain.Task, error) {
	return s.Filter(ctx, boardID, store.TaskFilter{Status: &status})
}

// Filter implements store.TaskStore.
func (s *MockTaskStore) Filter(_ context.Context, boardID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	tasks := s.collect(func(t domain.Task) bool {
		switch {
		case t.BoardID != boardID:
			return false
		case filter.Status != nil && t.Status != *filter.Status:
			return false
		case filter.Priority != nil && t.Priority != *filter.Priority:
			return false
		case filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo):
			return false
		}
		return true
	})
	sortByColumn(tasks)
	return tasks, nil
}

// Search implements store.TaskStore.
func (s *MockTaskStore) Search(_ context.Context, query string, boardID *uuid.UUID) ([]*domain.Task, error) {
	needle := strings.ToLower(query)
	tasks := s.collect(func(t domain.Task) bool {
		if boardID != nil && t.BoardID != *boardID {
			return false
		}
		return strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle)
	})
	if boardID != nil {
		sortByColumn(tasks)
	} else {
		sortByCreation(tasks)
	}
	return tasks, nil
}

// Update implements store.TaskStore.
func (s *MockTaskStore) Update(_ context.Context, existing *domain.Task, patch domain.TaskPatch) error {
	updated := cloneTask(*existing)
	if err := patch.Apply(&updated); err != nil {
		return err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	stored, ok := s.mem.tasks[existing.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	stored.Title = updated.Title
	stored.Description = updated.Description
	stored.Priority = updated.Priority
	stored.DueDate = updated.DueDate
	stored.UpdatedAt = updated.UpdatedAt
	s.mem.tasks[existing.ID] = stored
	*existing = updated
	return nil
}

// Assign implements store.TaskStore.
func (s *MockTaskStore) Assign(_ context.Context, id uuid.UUID, assignee *uuid.UUID) (*domain.Task, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	t, ok := s.mem.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if err := s.checkRefs(uuid.Nil, assignee); err != nil {
		return nil, err
	}
	if assignee != nil {
		a := *assignee
		t.AssignedTo = &a
	} else {
		t.AssignedTo = nil
	}
	t.UpdatedAt = time.Now().UTC()
	s.mem.tasks[id] = t
	out := cloneTask(t)
	return &out, nil
}

// Delete implements store.TaskStore.
func (s *MockTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.mem.tasks, id)
	return nil
}

// LockBoard implements store.TaskStore. Memory.RunInTx already serializes
// transactions, so only existence is checked.
func (s *MockTaskStore) LockBoard(_ context.Context, boardID uuid.UUID) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.boards[boardID]; !ok {
		return store.ErrBoardNotFound
	}
	return nil
}

// ListColumn implements store.TaskStore.
func (s *MockTaskStore) ListColumn(
	_ context.Context,
	boardID uuid.UUID,
	status domain.TaskStatus,
) ([]ordering.Entry, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	entries := make([]ordering.Entry, 0)
	for _, t := range s.mem.tasks {
		if t.BoardID == boardID && t.Status == status {
			entries = append(entries, ordering.Entry{ID: t.ID, Status: t.Status, Position: t.Position})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Position != entries[j].Position {
			return entries[i].Position < entries[j].Position
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return entries, nil
}

// SetPositions implements store.TaskStore.
func (s *MockTaskStore) SetPositions(ctx context.Context, changes []ordering.Entry) error {
	if s.SetPositionsFn != nil {
		return s.SetPositionsFn(ctx, changes)
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	now := time.Now().UTC()
	for _, c := range changes {
		t, ok := s.mem.tasks[c.ID]
		if !ok {
			return store.NewStoreError("task", "reposition", "task not found", store.ErrTaskNotFound)
		}
		t.Status = c.Status
		t.Position = c.Position
		t.UpdatedAt = now
		s.mem.tasks[c.ID] = t
	}
	return nil
}

func cloneTask(t domain.Task) domain.Task {
	if t.AssignedTo != nil {
		a := *t.AssignedTo
		t.AssignedTo = &a
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
