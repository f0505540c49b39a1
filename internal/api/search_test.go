package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/engine"
	"periplo/pkg/model"
)

type fakeSearcher struct {
	result *model.SearchResult
	err    error
	got    *model.SearchRequest
}

func (f *fakeSearcher) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResult, error) {
	f.got = req
	return f.result, f.err
}

func searchBody() string {
	return `{
		"zone_name": "Golfo dei Poeti",
		"polygon": [[43.95, 9.60], [43.95, 10.0], [44.15, 10.0], [44.15, 9.60]],
		"extend_marine": true
	}`
}

func TestHandleSearch(t *testing.T) {
	searcher := &fakeSearcher{result: &model.SearchResult{
		ZoneName: "Golfo dei Poeti",
		POIs:     []model.POI{{Name: "Castello di Lerici", Type: model.TypeLand}},
		Statistics: model.Statistics{
			TotalPOIs:     1,
			Partial:       true,
			FailedSources: []string{"dbpedia"},
		},
	}}
	h := NewSearchHandler(searcher)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(searchBody()))
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, searcher.got)
	assert.True(t, searcher.got.ExtendMarine)

	var res model.SearchResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, "Golfo dei Poeti", res.ZoneName)
	assert.True(t, res.Statistics.Partial)
	require.Len(t, res.POIs, 1)
}

func TestHandleSearch_MalformedBody(t *testing.T) {
	h := NewSearchHandler(&fakeSearcher{})

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}

func TestHandleSearch_InvalidRequest(t *testing.T) {
	h := NewSearchHandler(&fakeSearcher{
		err: fmt.Errorf("%w: zone_name is required", engine.ErrInvalidRequest),
	})

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(searchBody()))
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "zone_name is required")
}

func TestHandleSearch_InternalError(t *testing.T) {
	h := NewSearchHandler(&fakeSearcher{err: assert.AnError})

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(searchBody()))
	w := httptest.NewRecorder()
	h.HandleSearch(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal")
}
