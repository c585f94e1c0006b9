package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RegistryInvalidator сбрасывает локальный кэш реестра и рассылает сигнал
// остальным экземплярам консоли.
type RegistryInvalidator interface {
	InvalidateRegistry()
}

type InvalidateBroadcaster interface {
	BroadcastInvalidate(ctx context.Context) error
}

type RegistryHandler struct {
	agents    RegistryInvalidator
	broadcast InvalidateBroadcaster // nil — один экземпляр, рассылка не нужна
	logger    *zap.Logger
}

func NewRegistryHandler(agents RegistryInvalidator, broadcast InvalidateBroadcaster, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{agents: agents, broadcast: broadcast, logger: logger}
}

type InvalidateResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Invalidate POST /v1/registry/invalidate — форсирует перечитывание agents.json
// при следующем обращении. Ошибка рассылки не проваливает запрос: локальный
// кэш уже сброшен, остальные экземпляры догонятся по TTL.
func (h *RegistryHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	h.agents.InvalidateRegistry()

	if h.broadcast != nil {
		if err := h.broadcast.BroadcastInvalidate(r.Context()); err != nil {
			h.logger.Warn("failed to broadcast registry invalidation", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, InvalidateResponse{
		Message:   "registry cache invalidated",
		Timestamp: time.Now().UTC(),
	})
}
