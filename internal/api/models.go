package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username"  validate:"required,min=3,max=50"`
	Email    string `json:"email"     validate:"omitempty,email,max=254"`
	Password string `json:"password"  validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=100"`
}

// LoginRequest defines the payload for the login endpoint. Username may
// also hold an email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   string       `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserResponse is the public view of a user. The password hash never
// leaves the server.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email,omitempty"`
	FullName  string      `json:"full_name,omitempty"`
	IsActive  bool        `json:"is_active"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UpdateUserRequest is a partial user update. Absent fields are unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email"     validate:"omitempty,email,max=254"`
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"      validate:"omitempty,oneof=user admin"`
}

// ChangePasswordRequest defines the payload for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// CreateBoardRequest defines the payload for creating a board. OwnerID is
// honoured for admins only.
type CreateBoardRequest struct {
	Name        string     `json:"name"        validate:"required,max=100"`
	Description string     `json:"description" validate:"max=1000"`
	IsPublic    bool       `json:"is_public"`
	OwnerID     *uuid.UUID `json:"owner_id"`
}

// UpdateBoardRequest is a partial board update.
type UpdateBoardRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsPublic    *bool   `json:"is_public"`
}

// BoardResponse is a board with its task count.
type BoardResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     uuid.UUID `json:"owner_id"`
	TasksCount  int       `json:"tasks_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BoardDetailResponse is a board with its tasks ordered by column.
type BoardDetailResponse struct {
	BoardResponse
	Tasks []TaskResponse `json:"tasks"`
}

// DeleteBoardResponse reports how many tasks went with the board.
type DeleteBoardResponse struct {
	Message           string `json:"message"`
	DeletedTasksCount int    `json:"deleted_tasks_count"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	BoardID     uuid.UUID  `json:"board_id"    validate:"required"`
	Title       string     `json:"title"       validate:"required,max=200"`
	Description string     `json:"description"`
	Status      string     `json:"status"      validate:"omitempty,oneof=todo in_progress done"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	Position    *int       `json:"position"`
}

// UpdateTaskRequest is a partial task update. A status or position change
// moves the task.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"      validate:"omitempty,oneof=todo in_progress done"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	Position    *int       `json:"position"`
}

// MoveTaskRequest moves a task to a column and position. Out-of-range
// positions, negative ones included, are clamped to the column.
type MoveTaskRequest struct {
	Status   string `json:"status"   validate:"required,oneof=todo in_progress done"`
	Position *int   `json:"position" validate:"required"`
}

// AssignTaskRequest sets the assignee. A null AssignedTo unassigns.
type AssignTaskRequest struct {
	AssignedTo *uuid.UUID `json:"assigned_to"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	Position    int                 `json:"position"`
	BoardID     uuid.UUID           `json:"board_id"`
	AssignedTo  *uuid.UUID          `json:"assigned_to"`
	DueDate     *time.Time          `json:"due_date"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func usersToResponse(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	return out
}

func boardToResponse(b *domain.Board, tasksCount int) BoardResponse {
	return BoardResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		IsPublic:    b.IsPublic,
		OwnerID:     b.OwnerID,
		TasksCount:  tasksCount,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func summariesToResponse(boards []*service.BoardSummary) []BoardResponse {
	out := make([]BoardResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, boardToResponse(b.Board, b.TasksCount))
	}
	return out
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Position:    t.Position,
		BoardID:     t.BoardID,
		AssignedTo:  t.AssignedTo,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}
