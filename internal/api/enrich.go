package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"periplo/pkg/engine"
	"periplo/pkg/enrich"
	"periplo/pkg/model"
)

// Enricher resolves a description and image for a single POI.
type Enricher interface {
	EnrichPOI(ctx context.Context, name, poiType string) enrich.Result
}

// POIHandler exposes operations over an already-assembled POI set.
type POIHandler struct {
	enricher Enricher
}

// NewPOIHandler creates a POIHandler. The enricher may be nil when no
// enrichment chain is configured.
func NewPOIHandler(en Enricher) *POIHandler {
	return &POIHandler{enricher: en}
}

type poiSetRequest struct {
	ZoneName string      `json:"zone_name"`
	POIs     []model.POI `json:"pois"`
}

type enrichRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// HandleEnrich handles POST /api/pois/enrich.
func (h *POIHandler) HandleEnrich(w http.ResponseWriter, r *http.Request) {
	if h.enricher == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "enrichment not configured")
		return
	}

	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	writeJSON(w, http.StatusOK, h.enricher.EnrichPOI(r.Context(), req.Name, req.Type))
}

// HandleAnalyze handles POST /api/analyze.
func (h *POIHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req poiSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	writeJSON(w, http.StatusOK, engine.AnalyzeQuality(req.POIs))
}
