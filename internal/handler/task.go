package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskdock/taskdock-go/internal/middleware"
	"github.com/taskdock/taskdock-go/internal/model"
	"github.com/taskdock/taskdock-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleListTasks handles GET /api/tasks requests. Query parameters:
// status (bool), priority (exact match), sort_by (created_at, priority,
// status; defaults to created_at).
func (h *TaskHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("not authenticated"))
		return
	}

	filter := model.TaskFilter{
		Priority: r.URL.Query().Get("priority"),
		SortBy:   "created_at",
	}

	if v := r.URL.Query().Get("status"); v != "" {
		status, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse("status must be a boolean"))
			return
		}
		filter.Status = &status
	}

	if v := r.URL.Query().Get("sort_by"); v != "" {
		filter.SortBy = v
	}

	tasks, err := h.service.List(r.Context(), user.ID, filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreateTask handles POST /api/tasks requests.
func (h *TaskHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("not authenticated"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired), errors.Is(err, service.ErrInvalidPriority):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("not authenticated"))
		return
	}

	taskID, ok := taskIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("task not found"))
		return
	}

	resp, err := h.service.Get(r.Context(), user.ID, taskID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdateTask handles PUT /api/tasks/{id} requests. Only fields present
// in the body are applied; absent fields keep their stored values.
func (h *TaskHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("not authenticated"))
		return
	}

	taskID, ok := taskIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("task not found"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Update(r.Context(), user.ID, taskID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPriority) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleToggleTask handles PATCH /api/tasks/{id}/toggle requests.
func (h *TaskHandler) HandleToggleTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("not authenticated"))
		return
	}

	taskID, ok := taskIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("task not found"))
		return
	}

	resp, err := h.service.Toggle(r.Context(), user.ID, taskID)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("not authenticated"))
		return
	}

	taskID, ok := taskIDParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse("task not found"))
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, taskID); err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// taskIDParam parses the {id} URL parameter. A non-numeric id maps to the
// same not-found response as an absent task.
func taskIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func writeTaskError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrTaskNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}
