package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

type SummaryProvider interface {
	Counts(ctx context.Context) domain.TaskCounts
}

type FleetProvider interface {
	FleetStats(ctx context.Context) (domain.FleetStats, error)
}

type DashboardHandler struct {
	tasks  SummaryProvider
	agents FleetProvider
}

func NewDashboardHandler(tasks SummaryProvider, agents FleetProvider) *DashboardHandler {
	return &DashboardHandler{tasks: tasks, agents: agents}
}

type SummaryResponse struct {
	Summary   domain.DashboardSummary `json:"summary"`
	Timestamp time.Time               `json:"timestamp"`
}

// Summary GET /v1/dashboard/summary — агрегат по задачам и флоту.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	fleet, err := h.agents.FleetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		Summary: domain.DashboardSummary{
			Tasks:  h.tasks.Counts(r.Context()),
			Agents: fleet,
		},
		Timestamp: time.Now().UTC(),
	})
}
