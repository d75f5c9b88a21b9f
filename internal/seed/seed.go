// Package seed loads a small sample dataset: an admin and two regular
// accounts, three boards and a handful of tasks spread over the columns.
// Everything goes through the services, so positions and ownership rules
// are the same as for API callers. Running it again skips whatever
// already exists.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
)

// UserSeed describes one sample account.
type UserSeed struct {
	Username string
	Email    string
	Password string
	FullName string
	Admin    bool
}

// BoardSeed describes one sample board. Owner is a username.
type BoardSeed struct {
	Name        string
	Description string
	IsPublic    bool
	Owner       string
}

// TaskSeed describes one sample task. Board is matched by name within the
// seeded boards, Assignee by username. A zero DueIn means no due date.
type TaskSeed struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	Position    int
	Board       string
	Assignee    string
	DueIn       time.Duration
}

// Dataset is what Run loads.
type Dataset struct {
	Users  []UserSeed
	Boards []BoardSeed
	Tasks  []TaskSeed
}

// DefaultDataset returns the sample data shipped with the project.
func DefaultDataset() Dataset {
	return Dataset{
		Users: []UserSeed{
			{Username: "admin", Email: "admin@example.com", Password: "admin123", FullName: "Administrator", Admin: true},
			{Username: "johndoe", Email: "john@example.com", Password: "password123", FullName: "John Doe"},
			{Username: "janesmith", Email: "jane@example.com", Password: "password123", FullName: "Jane Smith"},
		},
		Boards: []BoardSeed{
			{Name: "Personal Tasks", Description: "Personal to-do list", Owner: "johndoe"},
			{Name: "Work Project", Description: "Company project", IsPublic: true, Owner: "johndoe"},
			{Name: "Home Renovation", Description: "Repairs around the house", Owner: "janesmith"},
		},
		Tasks: []TaskSeed{
			{
				Title: "Setup development environment", Description: "Install Go, PostgreSQL and Redis",
				Status: domain.StatusDone, Priority: domain.PriorityHigh, Position: 0,
				Board: "Personal Tasks", Assignee: "johndoe", DueIn: -24 * time.Hour,
			},
			{
				Title: "Design database schema", Description: "Tables and relationships for users, boards and tasks",
				Status: domain.StatusDone, Priority: domain.PriorityHigh, Position: 1,
				Board: "Personal Tasks", Assignee: "johndoe",
			},
			{
				Title: "Implement repositories", Description: "User, board and task stores",
				Status: domain.StatusInProgress, Priority: domain.PriorityMedium, Position: 0,
				Board: "Personal Tasks", Assignee: "johndoe", DueIn: 48 * time.Hour,
			},
			{
				Title: "Write API tests", Description: "Handler tests for every endpoint",
				Status: domain.StatusTodo, Priority: domain.PriorityLow, Position: 0,
				Board: "Personal Tasks",
			},
			{
				Title: "Setup CI/CD pipeline", Description: "GitHub Actions for automated testing",
				Status: domain.StatusTodo, Priority: domain.PriorityMedium, Position: 1,
				Board: "Work Project", Assignee: "janesmith",
			},
		},
	}
}

// Report counts what a run created and what it found already present.
type Report struct {
	UsersCreated  int
	UsersSkipped  int
	BoardsCreated int
	BoardsSkipped int
	TasksCreated  int
	TasksSkipped  int
}

// Seeder loads a Dataset through the services.
type Seeder struct {
	users  service.UserService
	boards service.BoardService
	tasks  service.TaskService
	logger *slog.Logger
	now    func() time.Time
}

// NewSeeder creates a Seeder.
func NewSeeder(
	users service.UserService,
	boards service.BoardService,
	tasks service.TaskService,
	logger *slog.Logger,
) (*Seeder, error) {
	if users == nil {
		return nil, errors.New("user service cannot be nil")
	}
	if boards == nil {
		return nil, errors.New("board service cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("task service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		users:  users,
		boards: boards,
		tasks:  tasks,
		logger: logger.With("component", "seeder"),
		now:    time.Now,
	}, nil
}

// Run loads data. Users are matched by username, boards by owner and
// name, tasks by board and title; matches are left untouched except that
// accounts marked Admin are promoted if they are not admins yet.
func (s *Seeder) Run(ctx context.Context, data Dataset) (*Report, error) {
	report := &Report{}

	users := make(map[string]*domain.User, len(data.Users))
	for _, u := range data.Users {
		user, err := s.seedUser(ctx, u, report)
		if err != nil {
			return report, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		users[u.Username] = user
	}

	boards := make(map[string]*domain.Board, len(data.Boards))
	for _, b := range data.Boards {
		owner, ok := users[b.Owner]
		if !ok {
			return report, fmt.Errorf("seed board %s: owner %s is not in the dataset", b.Name, b.Owner)
		}
		board, err := s.seedBoard(ctx, b, owner, report)
		if err != nil {
			return report, fmt.Errorf("seed board %s: %w", b.Name, err)
		}
		boards[b.Name] = board
	}

	titles := make(map[uuid.UUID]map[string]bool, len(boards))
	for _, t := range data.Tasks {
		board, ok := boards[t.Board]
		if !ok {
			return report, fmt.Errorf("seed task %s: board %s is not in the dataset", t.Title, t.Board)
		}
		if titles[board.ID] == nil {
			existing, err := s.existingTitles(ctx, board.ID)
			if err != nil {
				return report, fmt.Errorf("seed task %s: %w", t.Title, err)
			}
			titles[board.ID] = existing
		}
		if titles[board.ID][t.Title] {
			report.TasksSkipped++
			s.logger.Info("task already exists", "title", t.Title, "board", board.Name)
			continue
		}

		input := service.TaskInput{
			BoardID:     board.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			Position:    &t.Position,
		}
		if t.Assignee != "" {
			assignee, ok := users[t.Assignee]
			if !ok {
				return report, fmt.Errorf("seed task %s: assignee %s is not in the dataset", t.Title, t.Assignee)
			}
			input.AssignedTo = &assignee.ID
		}
		if t.DueIn != 0 {
			due := s.now().Add(t.DueIn).UTC()
			input.DueDate = &due
		}

		task, err := s.tasks.CreateTask(ctx, input)
		if err != nil {
			return report, fmt.Errorf("seed task %s: %w", t.Title, err)
		}
		titles[board.ID][t.Title] = true
		report.TasksCreated++
		s.logger.Info("task created",
			"title", task.Title,
			"board", board.Name,
			"status", task.Status,
			"position", task.Position)
	}

	return report, nil
}

func (s *Seeder) seedUser(ctx context.Context, u UserSeed, report *Report) (*domain.User, error) {
	user, err := s.users.GetUserByUsername(ctx, u.Username)
	switch {
	case err == nil:
		report.UsersSkipped++
		s.logger.Info("user already exists", "username", u.Username)
	case errors.Is(err, store.ErrUserNotFound):
		user, err = s.users.Register(ctx, service.RegisterInput{
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			FullName: u.FullName,
		})
		if err != nil {
			return nil, err
		}
		report.UsersCreated++
		s.logger.Info("user created", "username", u.Username)
	default:
		return nil, err
	}

	if u.Admin && !user.IsAdmin() {
		if user, err = s.users.SetRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			return nil, err
		}
		s.logger.Info("user promoted to admin", "username", u.Username)
	}
	return user, nil
}

func (s *Seeder) seedBoard(ctx context.Context, b BoardSeed, owner *domain.User, report *Report) (*domain.Board, error) {
	owned, err := s.boards.ListBoards(ctx, owner, &owner.ID, store.Page{Limit: store.MaxLimit})
	if err != nil {
		return nil, err
	}
	for _, summary := range owned {
		if summary.Board.Name == b.Name {
			report.BoardsSkipped++
			s.logger.Info("board already exists", "name", b.Name, "owner", owner.Username)
			return summary.Board, nil
		}
	}

	created, err := s.boards.CreateBoard(ctx, owner, service.BoardInput{
		Name:        b.Name,
		Description: b.Description,
		IsPublic:    b.IsPublic,
	})
	if err != nil {
		return nil, err
	}
	report.BoardsCreated++
	s.logger.Info("board created", "name", b.Name, "owner", owner.Username)
	return created.Board, nil
}

func (s *Seeder) existingTitles(ctx context.Context, boardID uuid.UUID) (map[string]bool, error) {
	tasks, err := s.tasks.ListTasks(ctx, boardID, store.TaskFilter{})
	if err != nil {
		return nil, err
	}
	titles := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		titles[t.Title] = true
	}
	return titles, nil
}
