package model

import "time"

// Priority is the task priority level.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is one of the three recognized priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a task row in the database. Status is false while the task
// is pending and true once completed. UpdatedAt stays nil until the first
// mutation.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Status      bool
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Priority    Priority `json:"priority"`
}

// UpdateTaskRequest represents a partial task update. Nil pointers mean the
// field was not supplied and must be left untouched; a non-nil pointer to an
// empty string is an explicit clear.
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *bool     `json:"status"`
	Priority    *Priority `json:"priority"`
}

// TaskFilter restricts and orders a task listing.
type TaskFilter struct {
	Status   *bool
	Priority string
	SortBy   string
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      bool       `json:"status"`
	Priority    Priority   `json:"priority"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
