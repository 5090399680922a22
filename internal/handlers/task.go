package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-board/httpx"
	"github.com/diewo77/go-board/internal/middleware"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/internal/services"
	"github.com/diewo77/go-board/validation"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")
	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, tasks)
		return
	}
	render(w, r, "tasks.html", map[string]any{
		"Tasks":    tasks,
		"Filter":   filter,
		"Statuses": models.TaskStatuses,
	})
}

func taskForm(r *http.Request) services.TaskInput {
	return services.TaskInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Status:      models.TaskStatus(r.FormValue("status")),
	}
}

func (h *TaskHandler) renderForm(w http.ResponseWriter, r *http.Request, task *models.Task, form services.TaskInput, v validation.Violations) {
	action := "/tasks/add/"
	if task != nil {
		action = "/tasks/" + strconv.FormatUint(uint64(task.ID), 10) + "/edit/"
	}
	render(w, r, "task_form.html", map[string]any{
		"Task":     task,
		"Form":     form,
		"Errors":   v,
		"Action":   action,
		"Statuses": models.TaskStatuses,
	})
}

func (h *TaskHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderForm(w, r, nil, services.TaskInput{Status: models.TaskPending}, nil)
		return
	}

	form := taskForm(r)
	_, err := h.tasks.Create(r.Context(), form)
	if v, ok := services.Violations(err); ok {
		h.renderForm(w, r, nil, form, v)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	middleware.Flash(w, r, middleware.FlashSuccess, "task_created")
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r)
		return
	}
	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	if r.Method == http.MethodGet {
		form := services.TaskInput{Title: task.Title, Description: task.Description, Status: task.Status}
		h.renderForm(w, r, task, form, nil)
		return
	}

	form := taskForm(r)
	_, err = h.tasks.Update(r.Context(), id, form)
	if v, ok := services.Violations(err); ok {
		h.renderForm(w, r, task, form, v)
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	middleware.Flash(w, r, middleware.FlashSuccess, "task_updated")
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r)
		return
	}
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	middleware.Flash(w, r, middleware.FlashSuccess, "task_deleted")
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

type statusResponse struct {
	Success bool              `json:"success"`
	Status  models.TaskStatus `json:"status,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// UpdateStatus is the AJAX status switch. The status comes from the form
// field "status" or a JSON body {"status": "..."}.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSON(w, http.StatusNotFound, statusResponse{Error: "not_found"})
		return
	}

	var status string
	if httpx.SentJSON(r) {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSON(w, http.StatusBadRequest, statusResponse{Error: "invalid_json"})
			return
		}
		status = body.Status
	} else {
		status = r.FormValue("status")
	}

	task, err := h.tasks.SetStatus(r.Context(), id, models.TaskStatus(status))
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		httpx.JSON(w, http.StatusBadRequest, statusResponse{Error: "Invalid status"})
	case errors.Is(err, services.ErrNotFound):
		httpx.JSON(w, http.StatusNotFound, statusResponse{Error: "not_found"})
	case err != nil:
		serverError(w, r, err)
	default:
		httpx.JSON(w, http.StatusOK, statusResponse{Success: true, Status: task.Status})
	}
}
