package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/mocks"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mem    *mocks.Memory
	jwt    auth.JWTService
	users  *service.UserServiceImpl
	boards *service.BoardServiceImpl
	tasks  *service.TaskServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := mocks.NewMemory()
	jwtService := auth.RequireTestJWTService(t)

	users, err := service.NewUserService(mem.Users(), mem, auth.NewBcryptHasher(4), jwtService, logger)
	require.NoError(t, err)
	boards, err := service.NewBoardService(mem.Boards(), mem.Tasks(), mem, logger)
	require.NoError(t, err)
	tasks, err := service.NewTaskService(mem.Tasks(), mem.Boards(), mem.Users(), mem, logger)
	require.NoError(t, err)

	return &fixture{mem: mem, jwt: jwtService, users: users, boards: boards, tasks: tasks}
}

func (f *fixture) register(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) admin(t *testing.T, username string) *domain.User {
	t.Helper()
	user := f.register(t, username)
	role := domain.RoleAdmin
	require.NoError(t, f.mem.Users().Update(context.Background(), user, domain.UserPatch{Role: &role}))
	return user
}

func (f *fixture) board(t *testing.T, owner *domain.User, public bool) *domain.Board {
	t.Helper()
	summary, err := f.boards.CreateBoard(context.Background(), owner, service.BoardInput{
		Name:     "Board of " + owner.Username,
		IsPublic: public,
	})
	require.NoError(t, err)
	return summary.Board
}

func (f *fixture) task(t *testing.T, board *domain.Board, title string, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), service.TaskInput{
		BoardID: board.ID,
		Title:   title,
		Status:  status,
	})
	require.NoError(t, err)
	return task
}

// titles returns the titles of one column in position order.
func (f *fixture) titles(board *domain.Board, status domain.TaskStatus) []string {
	column := f.mem.Column(board.ID, status)
	out := make([]string, 0, len(column))
	for _, task := range column {
		out = append(out, task.Title)
	}
	return out
}
