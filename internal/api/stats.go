package api

import (
	"net/http"

	"periplo/pkg/tracker"
)

// StatsHandler reports per-provider usage counters.
type StatsHandler struct {
	tracker *tracker.Tracker
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t}
}

type providerStatsDTO struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	APISuccess    int64 `json:"api_success"`
	APIZeroResult int64 `json:"api_zero"`
	APIFailures   int64 `json:"api_errors"`
	HitRate       int64 `json:"hit_rate"`
}

type statsResponse struct {
	Providers map[string]providerStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := statsResponse{Providers: make(map[string]providerStatsDTO, len(snapshot))}
	for provider, stats := range snapshot {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = providerStatsDTO{
			CacheHits:     stats.CacheHits,
			CacheMisses:   stats.CacheMisses,
			APISuccess:    stats.APISuccess,
			APIZeroResult: stats.APIZeroResult,
			APIFailures:   stats.APIFailures,
			HitRate:       hitRate,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleReset handles POST /api/stats/reset: counters go back to zero,
// provider entries stay.
func (h *StatsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
