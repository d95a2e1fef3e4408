package service

import (
	"context"
	"errors"

	"github.com/taskdock/taskdock-go/internal/model"
	"github.com/taskdock/taskdock-go/internal/repository"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidPriority = errors.New("priority must be one of Low, Medium, High")
	ErrTaskNotFound    = errors.New("task not found")
)

// TaskStore is the persistence surface TaskService needs.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error)
	GetByID(ctx context.Context, userID, taskID int64) (*model.Task, error)
	Update(ctx context.Context, userID, taskID int64, req model.UpdateTaskRequest) (*model.Task, error)
	Toggle(ctx context.Context, userID, taskID int64) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID int64) error
}

// TaskService handles task business logic.
type TaskService struct {
	tasks TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create creates a new pending task for the user. Priority defaults to
// Medium when unspecified.
func (s *TaskService) Create(ctx context.Context, userID int64, req model.CreateTaskRequest) (model.TaskResponse, error) {
	if req.Title == "" {
		return model.TaskResponse{}, ErrTitleRequired
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return model.TaskResponse{}, ErrInvalidPriority
	}

	task := &model.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return model.TaskResponse{}, err
	}

	return taskToResponse(task), nil
}

// List returns the user's tasks, filtered and sorted per the filter.
func (s *TaskService) List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.TaskResponse, error) {
	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	result := make([]model.TaskResponse, len(tasks))
	for i := range tasks {
		result[i] = taskToResponse(&tasks[i])
	}
	return result, nil
}

// Get returns a single task owned by the user.
func (s *TaskService) Get(ctx context.Context, userID, taskID int64) (model.TaskResponse, error) {
	task, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return model.TaskResponse{}, mapNotFound(err)
	}
	return taskToResponse(task), nil
}

// Update applies the supplied fields to a task owned by the user. Fields
// left nil are untouched; a pointer to an empty string clears the field.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, req model.UpdateTaskRequest) (model.TaskResponse, error) {
	if req.Priority != nil && !req.Priority.Valid() {
		return model.TaskResponse{}, ErrInvalidPriority
	}

	task, err := s.tasks.Update(ctx, userID, taskID, req)
	if err != nil {
		return model.TaskResponse{}, mapNotFound(err)
	}
	return taskToResponse(task), nil
}

// Toggle flips a task between pending and completed.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID int64) (model.TaskResponse, error) {
	task, err := s.tasks.Toggle(ctx, userID, taskID)
	if err != nil {
		return model.TaskResponse{}, mapNotFound(err)
	}
	return taskToResponse(task), nil
}

// Delete removes a task owned by the user.
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func taskToResponse(t *model.Task) model.TaskResponse {
	return model.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
