package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// AgentProvider описывает, что обработчику нужно от сервиса агентов.
type AgentProvider interface {
	List(ctx context.Context) ([]domain.AgentWithStatus, domain.RegistryDefaults, error)
	Get(ctx context.Context, id string) (domain.AgentWithStatus, error)
	Start(ctx context.Context, id string) (domain.AgentWithStatus, error)
	Stop(ctx context.Context, id string) (domain.AgentWithStatus, error)
}

type AgentHandler struct {
	service AgentProvider
}

func NewAgentHandler(s AgentProvider) *AgentHandler {
	return &AgentHandler{service: s}
}

// AgentsListResponse — снимок реестра с рантайм-статусами.
type AgentsListResponse struct {
	Agents    []domain.AgentWithStatus `json:"agents"`
	Defaults  domain.RegistryDefaults  `json:"defaults"`
	Timestamp time.Time                `json:"timestamp"`
}

type AgentDetailResponse struct {
	Agent     domain.AgentWithStatus `json:"agent"`
	Timestamp time.Time              `json:"timestamp"`
}

type AgentUpdateRequest struct {
	Action string `json:"action"` // start | stop
}

type AgentUpdateResponse struct {
	Agent     domain.AgentWithStatus `json:"agent"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
}

// List GET /v1/agents
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	agents, defaults, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AgentsListResponse{
		Agents:    agents,
		Defaults:  defaults,
		Timestamp: time.Now().UTC(),
	})
}

// Get GET /v1/agents/{id}
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	agent, err := h.service.Get(r.Context(), agentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AgentDetailResponse{
		Agent:     agent,
		Timestamp: time.Now().UTC(),
	})
}

// Update PATCH /v1/agents/{id} — единственная операция смены статуса (start/stop).
func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	var req AgentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "invalid request body")
		return
	}

	var (
		agent domain.AgentWithStatus
		err   error
	)
	switch req.Action {
	case "start":
		agent, err = h.service.Start(r.Context(), agentID)
	case "stop":
		agent, err = h.service.Stop(r.Context(), agentID)
	default:
		writeErrorCode(w, http.StatusBadRequest, "INVALID_ACTION", `invalid action, must be "start" or "stop"`)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	msg := fmt.Sprintf("Agent %s started successfully", agent.Name)
	if req.Action == "stop" {
		msg = fmt.Sprintf("Agent %s stopped successfully", agent.Name)
	}

	writeJSON(w, http.StatusOK, AgentUpdateResponse{
		Agent:     agent,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	})
}
