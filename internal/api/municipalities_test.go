package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/geo"
	"periplo/pkg/model"
)

type fakeDiscoverer struct {
	munis []model.Municipality
}

func (f *fakeDiscoverer) Discover(ctx context.Context, zoneName string, polygon geo.Polygon) []model.Municipality {
	return f.munis
}

func TestHandleDiscover(t *testing.T) {
	h := NewMunicipalityHandler(&fakeDiscoverer{munis: []model.Municipality{
		{Name: "Lerici", Subdivisions: []string{"Tellaro", "San Terenzo"}, POICount: 55},
		{Name: "Porto Venere", Subdivisions: []string{"Le Grazie"}, POICount: 45},
	}})

	body := `{"zone_name": "Golfo dei Poeti", "polygon": [[43.95, 9.60], [43.95, 10.0], [44.15, 10.0]]}`
	req := httptest.NewRequest("POST", "/api/municipalities", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleDiscover(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var res municipalityResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "Lerici", res.Municipalities[0].Name)
	assert.Contains(t, res.Municipalities[0].Subdivisions, "Tellaro")
}

func TestHandleDiscover_Validation(t *testing.T) {
	h := NewMunicipalityHandler(&fakeDiscoverer{})

	tests := []struct {
		name string
		body string
	}{
		{"missing zone", `{"polygon": [[43.95, 9.60], [43.95, 10.0], [44.15, 10.0]]}`},
		{"degenerate polygon", `{"zone_name": "X", "polygon": [[43.95, 9.60], [43.95, 10.0]]}`},
		{"malformed body", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/municipalities", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.HandleDiscover(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
