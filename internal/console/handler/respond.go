package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// ErrorResponse — единый конверт ошибки: {error, code, details?, timestamp}.
// Ни одна ошибка не покидает обработчик в сыром виде.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

// writeError маппит таксономию ошибок ядра на HTTP-статусы и машинные коды.
func writeError(w http.ResponseWriter, err error) {
	var cfgErr *domain.ConfigLoadError
	var upErr *domain.UpstreamError

	switch {
	case errors.As(err, &cfgErr):
		writeErrorCode(w, http.StatusInternalServerError, "AGENTS_LOAD_ERROR", cfgErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrAgentDisabled):
		writeErrorCode(w, http.StatusBadRequest, "AGENT_DISABLED", err.Error())
	case errors.Is(err, domain.ErrAgentBusy):
		writeErrorCode(w, http.StatusConflict, "AGENT_ALREADY_RUNNING", err.Error())
	case errors.Is(err, domain.ErrAgentNotRunning):
		writeErrorCode(w, http.StatusConflict, "AGENT_NOT_RUNNING", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrTaskFinished):
		writeErrorCode(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.As(err, &upErr):
		writeErrorCode(w, http.StatusBadGateway, "UPSTREAM_ERROR", upErr.Error())
	default:
		writeErrorCode(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
