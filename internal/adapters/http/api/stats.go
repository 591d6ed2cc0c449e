package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider reports runtime counters of the search service.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats: the provider's counters plus the API uptime.
type StatsHandler struct {
	statsProvider StatsProvider
	startedAt     time.Time
}

func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, startedAt: time.Now()}
}

func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	out := map[string]interface{}{}
	if h.statsProvider != nil {
		maps.Copy(out, h.statsProvider.GetStats())
	}
	out["uptimeSeconds"] = int64(time.Since(h.startedAt).Seconds())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, out)
}
