package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// MockBoardStore implements store.BoardStore over a Memory.
type MockBoardStore struct {
	mem *Memory

	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
}

var _ store.BoardStore = (*MockBoardStore)(nil)

// WithTx implements store.BoardStore.
func (s *MockBoardStore) WithTx(*sql.Tx) store.BoardStore { return s }

// Create implements store.BoardStore.
func (s *MockBoardStore) Create(_ context.Context, board *domain.Board) error {
	if err := board.Validate(); err != nil {
		return err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.users[board.OwnerID]; !ok {
		return store.MissingReference("user", board.OwnerID)
	}
	if _, exists := s.mem.boards[board.ID]; exists {
		return store.ErrDuplicate
	}
	s.mem.boards[board.ID] = *board
	return nil
}

// GetByID implements store.BoardStore.
func (s *MockBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	b, ok := s.mem.boards[id]
	if !ok {
		return nil, store.ErrBoardNotFound
	}
	return &b, nil
}

func (s *MockBoardStore) list(page store.Page, match func(domain.Board) bool) []*domain.Board {
	s.mem.mu.Lock()
	all := make([]*domain.Board, 0)
	for _, b := range s.mem.boards {
		if match(b) {
			b := b
			all = append(all, &b)
		}
	}
	s.mem.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return createdBefore(all[i].CreatedAt, all[i].ID, all[j].CreatedAt, all[j].ID)
	})
	return paginate(all, page)
}

// List implements store.BoardStore.
func (s *MockBoardStore) List(_ context.Context, page store.Page) ([]*domain.Board, error) {
	return s.list(page, func(domain.Board) bool { return true }), nil
}

// ListPublic implements store.BoardStore.
func (s *MockBoardStore) ListPublic(_ context.Context, page store.Page) ([]*domain.Board, error) {
	return s.list(page, func(b domain.Board) bool { return b.IsPublic }), nil
}

// GetByOwner implements store.BoardStore.
func (s *MockBoardStore) GetByOwner(
	_ context.Context,
	ownerID uuid.UUID,
	publicOnly bool,
	page store.Page,
) ([]*domain.Board, error) {
	return s.list(page, func(b domain.Board) bool {
		return b.OwnerID == ownerID && (b.IsPublic || !publicOnly)
	}), nil
}

// CountTasks implements store.BoardStore.
func (s *MockBoardStore) CountTasks(_ context.Context, boardID uuid.UUID) (int, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	n := 0
	for _, t := range s.mem.tasks {
		if t.BoardID == boardID {
			n++
		}
	}
	return n, nil
}

// Update implements store.BoardStore.
func (s *MockBoardStore) Update(_ context.Context, existing *domain.Board, patch domain.BoardPatch) error {
	updated := *existing
	if err := patch.Apply(&updated); err != nil {
		return err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.boards[existing.ID]; !ok {
		return store.ErrBoardNotFound
	}
	s.mem.boards[existing.ID] = updated
	*existing = updated
	return nil
}

// Delete implements store.BoardStore. Tasks on the board are removed too.
func (s *MockBoardStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.boards[id]; !ok {
		return store.ErrBoardNotFound
	}
	s.mem.deleteBoardLocked(id)
	return nil
}

func (m *Memory) deleteBoardLocked(id uuid.UUID) {
	delete(m.boards, id)
	for tid, t := range m.tasks {
		if t.BoardID == id {
			delete(m.tasks, tid)
		}
	}
}
