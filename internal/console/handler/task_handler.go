package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/dashboard-daddy/internal/console/service"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// TaskProvider описывает, что обработчику нужно от сервиса задач.
type TaskProvider interface {
	Create(ctx context.Context, in service.CreateInput) (*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, rawStatus string) ([]*domain.Task, error)
	Transition(ctx context.Context, id string, next domain.TaskStatus, taskErr string) (*domain.Task, error)
}

type TaskHandler struct {
	service TaskProvider
}

func NewTaskHandler(s TaskProvider) *TaskHandler {
	return &TaskHandler{service: s}
}

// Create POST /v1/tasks — частичная задача в теле, полная с id/таймстемпами в ответе.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "invalid request body")
		return
	}

	task, err := h.service.Create(r.Context(), in)
	if err != nil {
		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			writeError(w, err)
			return
		}
		writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// List GET /v1/tasks?status=...
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			writeError(w, err)
			return
		}
		writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get GET /v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type TransitionRequest struct {
	Status domain.TaskStatus `json:"status"`
	Error  string            `json:"error,omitempty"`
}

// Transition POST /v1/tasks/{id}/transition — смена статуса с проверкой автомата.
func (h *TaskHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown task status")
		return
	}

	task, err := h.service.Transition(r.Context(), chi.URLParam(r, "id"), req.Status, req.Error)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
