package api

import (
	"context"
	"encoding/json"
	"net/http"

	"periplo/pkg/geo"
	"periplo/pkg/model"
)

// Discoverer finds the settlements of a zone.
type Discoverer interface {
	Discover(ctx context.Context, zoneName string, polygon geo.Polygon) []model.Municipality
}

// MunicipalityHandler exposes municipality discovery on its own.
type MunicipalityHandler struct {
	discoverer Discoverer
}

// NewMunicipalityHandler creates a MunicipalityHandler.
func NewMunicipalityHandler(d Discoverer) *MunicipalityHandler {
	return &MunicipalityHandler{discoverer: d}
}

type municipalityRequest struct {
	ZoneName string      `json:"zone_name"`
	Polygon  [][]float64 `json:"polygon"`
}

type municipalityResponse struct {
	ZoneName       string               `json:"zone_name"`
	Municipalities []model.Municipality `json:"municipalities"`
	Total          int                  `json:"total"`
}

// HandleDiscover handles POST /api/municipalities.
func (h *MunicipalityHandler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	var req municipalityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if req.ZoneName == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "zone_name is required")
		return
	}
	polygon := geo.Polygon(req.Polygon)
	if err := polygon.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	munis := h.discoverer.Discover(r.Context(), req.ZoneName, polygon)
	writeJSON(w, http.StatusOK, municipalityResponse{
		ZoneName:       req.ZoneName,
		Municipalities: munis,
		Total:          len(munis),
	})
}
