package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/stream"
)

// AgentChecker — минимальный срез AgentProvider для проверки существования агента.
type AgentChecker interface {
	Exists(agentID string) (bool, error)
}

type StreamHandler struct {
	agents   AgentChecker
	source   stream.OutputSource
	interval time.Duration
	ping     time.Duration
	logger   *zap.Logger
}

func NewStreamHandler(agents AgentChecker, src stream.OutputSource, interval, ping time.Duration, logger *zap.Logger) *StreamHandler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if ping <= 0 {
		ping = 30 * time.Second
	}
	return &StreamHandler{agents: agents, source: src, interval: interval, ping: ping, logger: logger}
}

// Output GET /v1/agents/{id}/stream — SSE-поток вывода агента.
// Закрывается только отменой контекста клиента, записи идут до обрыва.
func (h *StreamHandler) Output(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	ok, err := h.agents.Exists(agentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeErrorCode(w, http.StatusNotFound, "NOT_FOUND", "unknown agent: "+agentID)
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeErrorCode(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Подтверждение подписки до первого тика.
	writeEvent(w, "connected", stream.Message{
		Type:      "connected",
		AgentID:   agentID,
		Data:      "output stream attached",
		Timestamp: time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	pinger := time.NewTicker(h.ping)
	defer pinger.Stop()

	ctx := r.Context()
	seq := 0
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("output stream detached", zap.String("agent_id", agentID), zap.Int("messages", seq))
			return
		case <-pinger.C:
			// Комментарий SSE держит соединение живым сквозь прокси.
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-ticker.C:
			msg := h.source.Next(agentID, seq)
			seq++
			writeEvent(w, "output", msg)
			flusher.Flush()
		}
	}
}

type CommandRequest struct {
	Command string `json:"command"`
}

type CommandResponse struct {
	Success   bool      `json:"success"`
	AgentID   string    `json:"agentId"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// Command POST /v1/agents/{id}/stream — команда в stdin агента.
// Реального процесса за консолью нет: команда подтверждается, не исполняется.
func (h *StreamHandler) Command(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	ok, err := h.agents.Exists(agentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeErrorCode(w, http.StatusNotFound, "NOT_FOUND", "unknown agent: "+agentID)
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST_BODY", "invalid request body")
		return
	}
	if req.Command == "" {
		writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", "command is required")
		return
	}

	h.logger.Info("agent command accepted",
		zap.String("agent_id", agentID),
		zap.String("command", req.Command))

	writeJSON(w, http.StatusOK, CommandResponse{
		Success:   true,
		AgentID:   agentID,
		Command:   req.Command,
		Timestamp: time.Now().UTC(),
	})
}

func writeEvent(w http.ResponseWriter, event string, msg stream.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
