package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// Memory is an in-memory database shared by the mock stores.
type Memory struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	users  map[uuid.UUID]domain.User
	boards map[uuid.UUID]domain.Board
	tasks  map[uuid.UUID]domain.Task

	userStore  *MockUserStore
	boardStore *MockBoardStore
	taskStore  *MockTaskStore

	// TxCount counts committed transactions.
	TxCount int
}

// NewMemory returns an empty in-memory database.
func NewMemory() *Memory {
	m := &Memory{
		users:  make(map[uuid.UUID]domain.User),
		boards: make(map[uuid.UUID]domain.Board),
		tasks:  make(map[uuid.UUID]domain.Task),
	}
	m.userStore = &MockUserStore{mem: m}
	m.boardStore = &MockBoardStore{mem: m}
	m.taskStore = &MockTaskStore{mem: m}
	return m
}

// Users returns the user store view.
func (m *Memory) Users() *MockUserStore { return m.userStore }

// Boards returns the board store view.
func (m *Memory) Boards() *MockBoardStore { return m.boardStore }

// Tasks returns the task store view.
func (m *Memory) Tasks() *MockTaskStore { return m.taskStore }

var _ store.TxRunner = (*Memory)(nil)

// RunInTx implements store.TxRunner. Transactions run one at a time. The
// function receives a nil *sql.Tx; the mock stores ignore it in WithTx.
func (m *Memory) RunInTx(ctx context.Context, fn store.TxFn) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.snapshot()
	if err := fn(ctx, nil); err != nil {
		m.restore(snapshot)
		return err
	}
	if err := m.checkPositions(); err != nil {
		m.restore(snapshot)
		return fmt.Errorf("%w: commit: %w", store.ErrTransactionFailed, err)
	}

	m.mu.Lock()
	m.TxCount++
	m.mu.Unlock()
	return nil
}

type memorySnapshot struct {
	users  map[uuid.UUID]domain.User
	boards map[uuid.UUID]domain.Board
	tasks  map[uuid.UUID]domain.Task
}

func (m *Memory) snapshot() memorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memorySnapshot{
		users:  make(map[uuid.UUID]domain.User, len(m.users)),
		boards: make(map[uuid.UUID]domain.Board, len(m.boards)),
		tasks:  make(map[uuid.UUID]domain.Task, len(m.tasks)),
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.boards {
		s.boards[k] = v
	}
	for k, v := range m.tasks {
		s.tasks[k] = v
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users, m.boards, m.tasks = s.users, s.boards, s.tasks
}

type columnKey struct {
	board  uuid.UUID
	status domain.TaskStatus
}

// checkPositions mirrors the deferred unique constraint on
// (board_id, status, position).
func (m *Memory) checkPositions() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[columnKey]map[int]uuid.UUID)
	for _, t := range m.tasks {
		key := columnKey{t.BoardID, t.Status}
		if seen[key] == nil {
			seen[key] = make(map[int]uuid.UUID)
		}
		if other, dup := seen[key][t.Position]; dup {
			return fmt.Errorf("%w: tasks %s and %s share position %d", store.ErrPositionConflict, other, t.ID, t.Position)
		}
		seen[key][t.Position] = t.ID
	}
	return nil
}

// Column returns the tasks of one column ordered by position. Tests use it
// to inspect the stored state directly.
func (m *Memory) Column(boardID uuid.UUID, status domain.TaskStatus) []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.tasks {
		if t.BoardID == boardID && t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// TaskCount returns the number of stored tasks.
func (m *Memory) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func paginate[T any](items []T, page store.Page) []T {
	page = page.Normalize()
	if page.Skip >= len(items) {
		return []T{}
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}
