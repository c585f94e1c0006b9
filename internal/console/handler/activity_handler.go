package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

type ActivityProvider interface {
	Compose(ctx context.Context, limit int) []domain.ActivityEntry
}

type ActivityHandler struct {
	composer ActivityProvider
}

func NewActivityHandler(c ActivityProvider) *ActivityHandler {
	return &ActivityHandler{composer: c}
}

type ActivityResponse struct {
	Items []domain.ActivityEntry `json:"items"`
	Total int                    `json:"total"`
	Limit int                    `json:"limit"`
}

// Feed GET /v1/activity?limit=N — best-effort лента, никогда не 5xx.
func (h *ActivityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	items := h.composer.Compose(r.Context(), limit)
	writeJSON(w, http.StatusOK, ActivityResponse{
		Items: items,
		Total: len(items),
		Limit: limit,
	})
}
