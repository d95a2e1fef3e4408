package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskdock/taskdock-go/internal/middleware"
	"github.com/taskdock/taskdock-go/internal/model"
	"github.com/taskdock/taskdock-go/internal/repository"
	"github.com/taskdock/taskdock-go/internal/service"
)

const testSecret = "test-secret"

// memUsers doubles as the auth service's store and the middleware's lookup.
type memUsers struct {
	nextID int64
	byID   map[int64]*model.User
}

func (m *memUsers) Create(ctx context.Context, user *model.User) error {
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type memTasks struct {
	nextID int64
	byID   map[int64]*model.Task
}

func (m *memTasks) Create(ctx context.Context, task *model.Task) error {
	m.nextID++
	task.ID = m.nextID
	task.Status = false
	task.CreatedAt = time.Now()
	task.UpdatedAt = nil
	cp := *task
	m.byID[task.ID] = &cp
	return nil
}

func (m *memTasks) List(ctx context.Context, userID int64, filter model.TaskFilter) ([]model.Task, error) {
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

func (m *memTasks) GetByID(ctx context.Context, userID, taskID int64) (*model.Task, error) {
	t, ok := m.byID[taskID]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Update(ctx context.Context, userID, taskID int64, req model.UpdateTaskRequest) (*model.Task, error) {
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

func (m *memTasks) Toggle(ctx context.Context, userID, taskID int64) (*model.Task, error) {
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

func (m *memTasks) Delete(ctx context.Context, userID, taskID int64) error {
	t, ok := m.byID[taskID]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(m.byID, taskID)
	return nil
}

// newTestRouter wires the full API surface over in-memory stores, mirroring
// the production route table.
func newTestRouter() http.Handler {
	users := &memUsers{byID: map[int64]*model.User{}}
	tasks := &memTasks{byID: map[int64]*model.Task{}}

	authHandler := NewAuthHandler(service.NewAuthService(users, testSecret, time.Hour))
	taskHandler := NewTaskHandler(service.NewTaskService(tasks))

	r := chi.NewRouter()
	r.Post("/api/auth/signup", authHandler.HandleSignup)
	r.Post("/api/auth/login", authHandler.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret, users))
		r.Get("/api/tasks", taskHandler.HandleListTasks)
		r.Post("/api/tasks", taskHandler.HandleCreateTask)
		r.Get("/api/tasks/{id}", taskHandler.HandleGetTask)
		r.Put("/api/tasks/{id}", taskHandler.HandleUpdateTask)
		r.Patch("/api/tasks/{id}/toggle", taskHandler.HandleToggleTask)
		r.Delete("/api/tasks/{id}", taskHandler.HandleDeleteTask)
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestSignupCreateToggleLoginScenario(t *testing.T) {
	h := newTestRouter()

	// Signup returns a usable token.
	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Al","email":"a@x.com","password":"longpass1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	auth := decodeBody[model.AuthResponse](t, rec)
	if auth.Token == "" {
		t.Fatal("signup returned empty token")
	}
	if auth.User.Email != "a@x.com" || auth.User.Name != "Al" {
		t.Errorf("unexpected user view: %+v", auth.User)
	}
	if strings.Contains(rec.Body.String(), "hash") || strings.Contains(rec.Body.String(), "password") {
		t.Errorf("auth response leaks credential material: %s", rec.Body.String())
	}

	// Create a task with only a title; defaults apply.
	rec = doJSON(t, h, http.MethodPost, "/api/tasks", auth.Token, `{"title":"buy milk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	task := decodeBody[model.TaskResponse](t, rec)
	if task.Status != false || task.Priority != model.PriorityMedium {
		t.Errorf("new task = status %v priority %q, want pending Medium", task.Status, task.Priority)
	}

	// Toggle completes it.
	rec = doJSON(t, h, http.MethodPatch, "/api/tasks/1/toggle", auth.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	toggled := decodeBody[model.TaskResponse](t, rec)
	if toggled.Status != true {
		t.Error("toggle should complete the task")
	}

	// Wrong password fails.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "",
		`{"email":"a@x.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong-password login status = %d, want 401", rec.Code)
	}
}

func TestSignupValidationAndConflict(t *testing.T) {
	h := newTestRouter()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Al","email":"a@x.com","password":"short7c"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short-password signup status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Al","email":"a@x.com","password":"longpass1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Bo","email":"a@x.com","password":"otherpass2"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", rec.Code)
	}
}

func TestTasksRequireAuth(t *testing.T) {
	h := newTestRouter()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/1"},
		{http.MethodPut, "/api/tasks/1"},
		{http.MethodPatch, "/api/tasks/1/toggle"},
		{http.MethodDelete, "/api/tasks/1"},
	} {
		rec := doJSON(t, h, tc.method, tc.path, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestTaskNotFoundResponses(t *testing.T) {
	h := newTestRouter()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Al","email":"a@x.com","password":"longpass1"}`)
	auth := decodeBody[model.AuthResponse](t, rec)

	rec = doJSON(t, h, http.MethodGet, "/api/tasks/99", auth.Token, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("absent task status = %d, want 404", rec.Code)
	}

	// A non-numeric id is indistinguishable from an absent task.
	rec = doJSON(t, h, http.MethodGet, "/api/tasks/abc", auth.Token, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("non-numeric id status = %d, want 404", rec.Code)
	}
}

func TestCrossUserTaskIsNotFound(t *testing.T) {
	h := newTestRouter()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Al","email":"a@x.com","password":"longpass1"}`)
	owner := decodeBody[model.AuthResponse](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Bo","email":"b@x.com","password":"longpass2"}`)
	other := decodeBody[model.AuthResponse](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/tasks", owner.Token, `{"title":"private"}`)
	created := decodeBody[model.TaskResponse](t, rec)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks/1"},
		{http.MethodPut, "/api/tasks/1"},
		{http.MethodPatch, "/api/tasks/1/toggle"},
		{http.MethodDelete, "/api/tasks/1"},
	} {
		rec := doJSON(t, h, tc.method, tc.path, other.Token, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s as other user: status = %d, want 404", tc.method, tc.path, rec.Code)
		}
	}

	rec = doJSON(t, h, http.MethodGet, "/api/tasks", other.Token, "")
	tasks := decodeBody[[]model.TaskResponse](t, rec)
	if len(tasks) != 0 {
		t.Errorf("other user's list has %d tasks, want 0", len(tasks))
	}

	// Still intact for the owner.
	rec = doJSON(t, h, http.MethodGet, "/api/tasks/1", owner.Token, "")
	if rec.Code != http.StatusOK {
		t.Errorf("owner get status = %d, want 200", rec.Code)
	}
	got := decodeBody[model.TaskResponse](t, rec)
	if got.ID != created.ID {
		t.Errorf("owner get returned task %d, want %d", got.ID, created.ID)
	}
}

func TestDeleteTaskMessage(t *testing.T) {
	h := newTestRouter()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Al","email":"a@x.com","password":"longpass1"}`)
	auth := decodeBody[model.AuthResponse](t, rec)

	doJSON(t, h, http.MethodPost, "/api/tasks", auth.Token, `{"title":"temp"}`)

	rec = doJSON(t, h, http.MethodDelete, "/api/tasks/1", auth.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	msg := decodeBody[map[string]string](t, rec)
	if msg["message"] != "Task deleted successfully" {
		t.Errorf("delete message = %q", msg["message"])
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/tasks/1", auth.Token, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestListMalformedStatusParam(t *testing.T) {
	h := newTestRouter()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "",
		`{"name":"Al","email":"a@x.com","password":"longpass1"}`)
	auth := decodeBody[model.AuthResponse](t, rec)

	rec = doJSON(t, h, http.MethodGet, "/api/tasks?status=banana", auth.Token, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed status filter: status = %d, want 400", rec.Code)
	}
}
