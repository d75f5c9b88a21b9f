package mocks

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// MockUserStore implements store.UserStore over a Memory.
type MockUserStore struct {
	mem *Memory

	CreateFn  func(ctx context.Context, user *domain.User) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

var _ store.UserStore = (*MockUserStore)(nil)

// WithTx implements store.UserStore.
func (s *MockUserStore) WithTx(*sql.Tx) store.UserStore { return s }

func (s *MockUserStore) checkUnique(user *domain.User) error {
	for _, u := range s.mem.users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
		if user.Email != "" && u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	return nil
}

// Create implements store.UserStore.
func (s *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, user)
	}
	if user.HashedPassword == "" {
		return store.ErrInvalidEntity
	}
	user.Password = ""
	if err := user.Validate(); err != nil {
		return err
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, exists := s.mem.users[user.ID]; exists {
		return store.ErrDuplicate
	}
	if err := s.checkUnique(user); err != nil {
		return err
	}
	s.mem.users[user.ID] = *user
	return nil
}

// GetByID implements store.UserStore.
func (s *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	u, ok := s.mem.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (s *MockUserStore) find(match func(domain.User) bool) (*domain.User, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	for _, u := range s.mem.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByUsername implements store.UserStore.
func (s *MockUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.find(func(u domain.User) bool { return u.Username == username })
}

// GetByEmail implements store.UserStore.
func (s *MockUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, store.ErrUserNotFound
	}
	return s.find(func(u domain.User) bool { return u.Email == email })
}

// List implements store.UserStore.
func (s *MockUserStore) List(_ context.Context, page store.Page) ([]*domain.User, error) {
	s.mem.mu.Lock()
	all := make([]*domain.User, 0, len(s.mem.users))
	for _, u := range s.mem.users {
		u := u
		all = append(all, &u)
	}
	s.mem.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return createdBefore(all[i].CreatedAt, all[i].ID, all[j].CreatedAt, all[j].ID)
	})
	return paginate(all, page), nil
}

// Update implements store.UserStore.
func (s *MockUserStore) Update(_ context.Context, existing *domain.User, patch domain.UserPatch) error {
	updated := *existing
	updated.Password = ""
	if err := patch.Apply(&updated); err != nil {
		return err
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.users[existing.ID]; !ok {
		return store.ErrUserNotFound
	}
	if err := s.checkUnique(&updated); err != nil {
		return err
	}
	s.mem.users[existing.ID] = updated
	*existing = updated
	return nil
}

func (s *MockUserStore) modify(id uuid.UUID, fn func(u *domain.User)) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	u, ok := s.mem.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	s.mem.users[id] = u
	return nil
}

// UpdatePassword implements store.UserStore.
func (s *MockUserStore) UpdatePassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	if hashedPassword == "" {
		return store.ErrInvalidEntity
	}
	return s.modify(id, func(u *domain.User) { u.HashedPassword = hashedPassword })
}

// SetActive implements store.UserStore.
func (s *MockUserStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	return s.modify(id, func(u *domain.User) { u.IsActive = active })
}

// Delete implements store.UserStore. Owned boards and their tasks are
// removed and assignments to the user are cleared.
func (s *MockUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, ok := s.mem.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.mem.users, id)
	for bid, b := range s.mem.boards {
		if b.OwnerID == id {
			s.mem.deleteBoardLocked(bid)
		}
	}
	for tid, t := range s.mem.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == id {
			t.AssignedTo = nil
			s.mem.tasks[tid] = t
		}
	}
	return nil
}

func createdBefore(a time.Time, aID uuid.UUID, b time.Time, bID uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID.String() < bID.String()
}
