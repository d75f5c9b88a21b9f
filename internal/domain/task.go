package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the column a task lives in.
type TaskStatus string

// Task statuses, in board column order.
const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses lists every status in column order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseTaskStatus converts s to a TaskStatus or returns a validation error.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", validationErr("status", "must be one of todo, in_progress, done")
	}
	return status, nil
}

// TaskPriority ranks task urgency.
type TaskPriority string

// Task priorities.
const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParseTaskPriority converts s to a TaskPriority or returns a validation error.
func ParseTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(s)
	if !priority.IsValid() {
		return "", validationErr("priority", "must be one of low, medium, high")
	}
	return priority, nil
}

// Task is a card on a board. Position is its zero-based rank within the
// (BoardID, Status) column. BoardID never changes after creation.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Position    int          `json:"position"`
	BoardID     uuid.UUID    `json:"board_id"`
	AssignedTo  *uuid.UUID   `json:"assigned_to"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a task for boardID. Empty status and priority default to
// todo and medium. The position is assigned when the task is stored.
func NewTask(
	boardID uuid.UUID,
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	assignedTo *uuid.UUID,
	dueDate *time.Time,
) (*Task, error) {
	if status == "" {
		status = StatusTodo
	}
	if priority == "" {
		priority = PriorityMedium
	}
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		Priority:    priority,
		BoardID:     boardID,
		AssignedTo:  assignedTo,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.BoardID == uuid.Nil {
		return NewValidationError("board_id", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return validationErr("title", "cannot be empty")
	}
	if len(t.Title) > 200 {
		return validationErr("title", "must be at most 200 characters")
	}
	if !t.Status.IsValid() {
		return validationErr("status", "must be one of todo, in_progress, done")
	}
	if !t.Priority.IsValid() {
		return validationErr("priority", "must be one of low, medium, high")
	}
	if t.Position < 0 {
		return validationErr("position", "must not be negative")
	}
	if t.AssignedTo != nil && *t.AssignedTo == uuid.Nil {
		return NewValidationError("assigned_to", "cannot be the nil ID", ErrInvalidID)
	}
	return nil
}

// TaskPatch lists the mutable task fields. Nil fields are left unchanged.
// Status and Position are not applied by Apply: they go through the
// ordering logic so the column stays dense.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	DueDate     *time.Time
	Status      *TaskStatus
	Position    *int
}

// Apply copies the set content fields onto t and validates the result.
func (p TaskPatch) Apply(t *Task) error {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due := p.DueDate.UTC()
		t.DueDate = &due
	}
	t.UpdatedAt = time.Now().UTC()
	return t.Validate()
}

// MovesTask reports whether the patch changes t's column or position.
func (p TaskPatch) MovesTask(t *Task) bool {
	return (p.Status != nil && *p.Status != t.Status) ||
		(p.Position != nil && *p.Position != t.Position)
}

// ChangesContent reports whether any field handled by Apply is set.
func (p TaskPatch) ChangesContent() bool {
	return p.Title != nil || p.Description != nil || p.Priority != nil || p.DueDate != nil
}
