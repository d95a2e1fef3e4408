package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/taskdock/taskdock-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskRepository handles task persistence operations. Every read and write is
// scoped by (task id, owning user id): a task owned by someone else behaves
// exactly like a task that does not exist.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const selectTask = `SELECT id, user_id, title, description, status, priority, created_at, updated_at FROM tasks`

// Create inserts a new task and returns the hydrated row. Status starts
// pending and updated_at stays NULL until the first mutation.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (user_id, title, description, priority) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, task.UserID, task.Title, task.Description, task.Priority)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	row := r.db.QueryRowContext(ctx, selectTask+` WHERE id = ?`, id)
	return scanTask(row, task)
}

// List retrieves the owner's tasks, restricted and ordered per the filter.
func (r *TaskRepository) List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error) {
	query, args := buildListQuery(userID, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetByID retrieves a task by id for the given owner.
func (r *TaskRepository) GetByID(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx, selectTask+` WHERE id = ? AND user_id = ?`, taskID, userID)

	task := &model.Task{}
	if err := scanTask(row, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// Update applies only the supplied fields and bumps updated_at, within a
// single transaction so the ownership check and the write cannot straddle a
// concurrent delete. An update with zero supplied fields still bumps
// updated_at.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID int64, req model.UpdateTaskRequest) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectTask+` WHERE id = ? AND user_id = ?`, taskID, userID)
	task := &model.Task{}
	if err := scanTask(row, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	query, args := buildUpdateQuery(userID, taskID, req)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	row = tx.QueryRowContext(ctx, selectTask+` WHERE id = ? AND user_id = ?`, taskID, userID)
	if err := scanTask(row, task); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

// Toggle flips the task's completion status and bumps updated_at.
func (r *TaskRepository) Toggle(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `UPDATE tasks SET status = NOT status, updated_at = NOW() WHERE id = ? AND user_id = ?`
	result, err := tx.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrTaskNotFound
	}

	row := tx.QueryRowContext(ctx, selectTask+` WHERE id = ? AND user_id = ?`, taskID, userID)
	task := &model.Task{}
	if err := scanTask(row, task); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task permanently.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// buildListQuery assembles the SELECT for List. Filters are exact matches.
// Recognized sort_by values: created_at (newest first), priority (severity
// descending, High before Medium before Low), status (pending before
// completed). Anything else leaves the rows in repository order.
func buildListQuery(userID int64, filter model.TaskFilter) (string, []any) {
	query := selectTask + ` WHERE user_id = ?`
	args := []any{userID}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, filter.Priority)
	}

	switch filter.SortBy {
	case "created_at":
		query += ` ORDER BY created_at DESC`
	case "priority":
		query += ` ORDER BY FIELD(priority, 'Low', 'Medium', 'High') DESC`
	case "status":
		query += ` ORDER BY status ASC`
	}

	return query, args
}

// buildUpdateQuery assembles the dynamic UPDATE for Update. Only non-nil
// request fields appear in the SET clause; updated_at is always bumped.
func buildUpdateQuery(userID, taskID int64, req model.UpdateTaskRequest) (string, []any) {
	query := `UPDATE tasks SET `
	args := []any{}

	if req.Title != nil {
		query += `title = ?, `
		args = append(args, *req.Title)
	}
	if req.Description != nil {
		query += `description = ?, `
		args = append(args, *req.Description)
	}
	if req.Status != nil {
		query += `status = ?, `
		args = append(args, *req.Status)
	}
	if req.Priority != nil {
		query += `priority = ?, `
		args = append(args, *req.Priority)
	}

	query += `updated_at = NOW() WHERE id = ? AND user_id = ?`
	args = append(args, taskID, userID)

	return query, args
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner, t *model.Task) error {
	var description sql.NullString
	var updatedAt sql.NullTime

	if err := s.Scan(
		&t.ID, &t.UserID, &t.Title, &description,
		&t.Status, &t.Priority, &t.CreatedAt, &updatedAt,
	); err != nil {
		return err
	}

	if description.Valid {
		t.Description = &description.String
	} else {
		t.Description = nil
	}
	if updatedAt.Valid {
		t.UpdatedAt = &updatedAt.Time
	} else {
		t.UpdatedAt = nil
	}

	return nil
}
