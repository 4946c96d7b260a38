package handler

import (
	"net/http"
	"time"

	"github.com/pulsefeed/autopub/internal/gate"
	"github.com/pulsefeed/autopub/internal/service"
)

// StatsHandler serves the aggregate queue snapshot consumed by the
// dashboard, including the release gate's cadence state.
// Raw Prometheus metrics are available at /metrics via promhttp and are
// separate from this endpoint.
type StatsHandler struct {
	svc  *service.PostService
	gate *gate.ReleaseGate
}

func NewStatsHandler(svc *service.PostService, g *gate.ReleaseGate) *StatsHandler {
	return &StatsHandler{svc: svc, gate: g}
}

// GetStats handles GET /api/v1/stats
//
// @Summary  Queue counts by status plus release cadence state
// @Tags     stats
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/stats [get]
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	var lastRelease *time.Time
	if t := h.gate.LastRelease(); !t.IsZero() {
		lastRelease = &t
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"counts": stats,
		"release_gate": map[string]any{
			"interval":        h.gate.Interval().String(),
			"last_release_at": lastRelease,
		},
	})
}
