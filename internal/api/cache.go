package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"periplo/pkg/cache"
)

// ResponsePurger clears cached provider responses by key prefix.
type ResponsePurger interface {
	DeleteCachePrefix(ctx context.Context, prefix string) (int64, error)
}

// CacheHandler exposes result cache maintenance.
type CacheHandler struct {
	results   *cache.ResultCache
	responses ResponsePurger // optional
}

// NewCacheHandler creates a CacheHandler. responses may be nil, in
// which case invalidation only touches the result cache.
func NewCacheHandler(rc *cache.ResultCache, responses ResponsePurger) *CacheHandler {
	return &CacheHandler{results: rc, responses: responses}
}

type invalidateRequest struct {
	// Zone limits the invalidation to one zone. Empty clears everything.
	Zone string `json:"zone,omitempty"`
}

// HandleInvalidate handles POST /api/cache/invalidate.
func (h *CacheHandler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
			return
		}
	}

	var (
		removed int
		err     error
	)
	if req.Zone != "" {
		removed, err = h.results.InvalidateZone(req.Zone)
	} else {
		removed, err = h.results.InvalidateAll()
		if err == nil && h.responses != nil {
			// A full flush also drops the raw provider responses, so
			// the next search refetches everything.
			if n, perr := h.responses.DeleteCachePrefix(r.Context(), ""); perr != nil {
				slog.Warn("Provider response purge failed", "error", perr)
			} else {
				slog.Info("Provider response cache purged", "entries", n)
			}
		}
	}
	if err != nil {
		slog.Error("Cache invalidation failed", "zone", req.Zone, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "cache invalidation failed")
		return
	}

	slog.Info("Result cache invalidated", "zone", req.Zone, "removed", removed)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
