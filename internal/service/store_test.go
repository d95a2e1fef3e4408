package service

import (
	"context"
	"time"

	"github.com/taskdock/taskdock-go/internal/model"
	"github.com/taskdock/taskdock-go/internal/repository"
)

// memUserStore is an in-memory UserStore with the same contract as the MySQL
// repository, including the unique-email behavior.
type memUserStore struct {
	nextID int64
	byID   map[int64]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{nextID: 1, byID: map[int64]*model.User{}}
}

func (m *memUserStore) Create(ctx context.Context, user *model.User) error {
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// memTaskStore is an in-memory TaskStore mirroring the repository contract:
// ownership scoping, partial updates, updated_at bumps.
type memTaskStore struct {
	nextID int64
	byID   map[int64]*model.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{nextID: 1, byID: map[int64]*model.Task{}}
}

func (m *memTaskStore) Create(ctx context.Context, task *model.Task) error {
	task.ID = m.nextID
	m.nextID++
	task.Status = false
	task.CreatedAt = time.Now()
	task.UpdatedAt = nil
	cp := *task
	m.byID[task.ID] = &cp
	return nil
}

func (m *memTaskStore) List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	for _, t := range m.byID {
		if t.UserID != userID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != "" && string(t.Priority) != filter.Priority {
			continue
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *memTaskStore) GetByID(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	t, ok := m.byID[taskID]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTaskStore) Update(ctx context.Context, userID, taskID int64, req model.UpdateTaskRequest) (*model.Task, error) {
	t, ok := m.byID[taskID]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		desc := *req.Description
		t.Description = &desc
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	now := time.Now()
	t.UpdatedAt = &now
	cp := *t
	return &cp, nil
}

func (m *memTaskStore) Toggle(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	t, ok := m.byID[taskID]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	t.Status = !t.Status
	now := time.Now()
	t.UpdatedAt = &now
	cp := *t
	return &cp, nil
}

func (m *memTaskStore) Delete(ctx context.Context, userID, taskID int64) error {
	t, ok := m.byID[taskID]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(m.byID, taskID)
	return nil
}
