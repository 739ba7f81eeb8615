package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TaskHandler serves the task endpoints.
type TaskHandler struct {
	taskService service.TaskService
	pagination  config.PaginationConfig
	logger      *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(
	taskService service.TaskService,
	pagination config.PaginationConfig,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		pagination:  pagination,
		logger:      logger.With("component", "task_handler"),
	}
}

// CreateTask handles POST /api/tasks/create.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), shared.IdentityFrom(r.Context()), req.Fields())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, "Task created", newTaskResponse(task))
}

// GetTask handles GET /api/tasks/{id}/info.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	task, err := h.taskService.GetTask(r.Context(), shared.IdentityFrom(r.Context()), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Task retrieved", newTaskResponse(task))
}

// ListTasks handles GET /api/tasks/all-tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, err := getPageRequest(r, h.pagination)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	tasks, err := h.taskService.ListTasks(r.Context(), shared.IdentityFrom(r.Context()), page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Tasks retrieved", newPageResponse(tasks, newTaskResponse))
}

// UpdateTask handles PUT /api/tasks/{id}/update. A stale version yields 409.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(
		r.Context(),
		shared.IdentityFrom(r.Context()),
		id,
		req.Fields(),
		*req.Version,
	)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Task updated", newTaskResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}/delete.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.taskService.DeleteTask(r.Context(), shared.IdentityFrom(r.Context()), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, "Task deleted", nil)
}
