package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"periplo/pkg/engine"
	"periplo/pkg/model"
)

// Searcher runs the zone search pipeline.
type Searcher interface {
	Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResult, error)
}

// SearchHandler exposes the zone search.
type SearchHandler struct {
	engine Searcher
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(e Searcher) *SearchHandler {
	return &SearchHandler{engine: e}
}

// HandleSearch handles POST /api/search. Provider failures yield a 200
// with statistics.partial set; only invalid input is a client error.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	result, err := h.engine.Search(r.Context(), &req)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		slog.Error("Search failed", "zone", req.ZoneName, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "search failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
