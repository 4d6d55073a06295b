package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/study-zen/internal/service"
)

// TaskHandler serves the study planner.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleList returns the user's tasks.
// GET /api/tasks?filter=all|active|completed
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	filter, err := service.ParseTaskFilter(r.URL.Query().Get("filter"))
	if err != nil {
		handleServiceError(w, err, "parse task filter")
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, filter)
	if err != nil {
		handleServiceError(w, err, "list tasks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": toTaskDTOs(tasks)})
}

// HandleCreate adds a task.
// POST /api/tasks
// Request: {"title":"..."}
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Title)
	if err != nil {
		handleServiceError(w, err, "create task")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"task": toTaskDTO(task)})
}

// HandleUpdate renames a task and/or marks it done.
// PATCH /api/tasks/{id}
// Request: {"title":"...","completed":true}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id.")
		return
	}

	var req struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Title == nil && req.Completed == nil {
		writeError(w, http.StatusUnprocessableEntity, "Nothing to update.")
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		handleServiceError(w, err, "get task")
		return
	}
	if req.Title != nil {
		if task, err = h.tasks.Rename(r.Context(), user.ID, taskID, *req.Title); err != nil {
			handleServiceError(w, err, "rename task")
			return
		}
	}
	if req.Completed != nil {
		if task, err = h.tasks.SetCompleted(r.Context(), user.ID, taskID, *req.Completed); err != nil {
			handleServiceError(w, err, "update task")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"task": toTaskDTO(task)})
}

// HandleDelete removes a task.
// DELETE /api/tasks/{id}
// Response: 204 No Content
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id.")
		return
	}

	if err := h.tasks.Delete(r.Context(), user.ID, taskID); err != nil {
		handleServiceError(w, err, "delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
