package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/config"
	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/request"
	"periplo/pkg/tracker"
)

type mapCache struct {
	data map[string][]byte
}

func (m *mapCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mapCache) SetCache(ctx context.Context, key string, val []byte) error {
	m.data[key] = val
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.RequestConfig{
		Retries: 1,
		Timeout: config.Duration(2 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(50 * time.Millisecond),
		},
	}
	return NewClient(request.New(cfg, &mapCache{data: map[string][]byte{}}, tracker.New()), srv.URL)
}

var testBBox = geo.BoundingBox{South: 44.0, West: 9.75, North: 44.15, East: 10.0}

func TestBuildQuery(t *testing.T) {
	q := buildQuery(touristTypes, testBBox, "it")

	assert.Contains(t, q, "VALUES ?type { wd:Q23413")
	assert.Contains(t, q, "FILTER(?lat >= 44 && ?lat <= 44.15 && ?lon >= 9.75 && ?lon <= 10)")
	assert.Contains(t, q, `LANG(?description) = "it"`)
	assert.Contains(t, q, `wikibase:language "it,en"`)
	assert.Contains(t, q, "LIMIT 100")
}

func TestBuildQuery_EnglishDefault(t *testing.T) {
	q := buildQuery(marineTypes, testBBox, "")
	assert.Contains(t, q, "wd:Q2867476")
	assert.Contains(t, q, `wikibase:language "en"`)
}

func TestSearchPOIs(t *testing.T) {
	const payload = `{"results":{"bindings":[
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q3662776"},
		 "itemLabel":{"type":"literal","value":"Castello di Lerici"},
		 "lat":{"type":"literal","value":"44.0757"},
		 "lon":{"type":"literal","value":"9.9115"},
		 "description":{"type":"literal","value":"castello in provincia della Spezia"}},
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q99999999"},
		 "itemLabel":{"type":"literal","value":"Q99999999"},
		 "lat":{"type":"literal","value":"44.05"},
		 "lon":{"type":"literal","value":"9.85"}}
	]}}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		assert.Contains(t, r.URL.Query().Get("query"), "VALUES ?type")
		w.Write([]byte(payload))
	})

	pois, err := c.SearchPOIs(context.Background(), testBBox, "it")
	require.NoError(t, err)
	// The unlabeled item comes back as a bare QID and is dropped.
	require.Len(t, pois, 1)

	p := pois[0]
	assert.Equal(t, "Castello di Lerici", p.Name)
	assert.Equal(t, model.SourceWikidata, p.Source)
	assert.Equal(t, "Q3662776", p.WikidataID)
	assert.Equal(t, model.TypeLand, p.Type)
	assert.InDelta(t, 44.0757, p.Lat, 1e-9)
}

func TestSearchMarinePOIs_Classification(t *testing.T) {
	const payload = `{"results":{"bindings":[
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q1"},
		 "itemLabel":{"type":"literal","value":"Relitto del Mohawk Deer"},
		 "lat":{"type":"literal","value":"44.0342"},
		 "lon":{"type":"literal","value":"9.8956"},
		 "description":{"type":"literal","value":"shipwreck near Portofino"}},
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q2"},
		 "itemLabel":{"type":"literal","value":"Faro del Tino"},
		 "lat":{"type":"literal","value":"44.0255"},
		 "lon":{"type":"literal","value":"9.8505"},
		 "description":{"type":"literal","value":"lighthouse on Tino island"}}
	]}}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	pois, err := c.SearchMarinePOIs(context.Background(), testBBox, "it")
	require.NoError(t, err)
	require.Len(t, pois, 2)

	assert.Equal(t, model.MarineWreck, pois[0].MarineType)
	assert.Equal(t, model.MarineLighthouse, pois[1].MarineType)
	assert.Equal(t, model.TypeMarine, pois[0].Type)
}

func TestEntityCard(t *testing.T) {
	const payload = `{"results":{"bindings":[
		{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q3662776"},
		 "description":{"type":"literal","value":"castello in provincia della Spezia"},
		 "image":{"type":"uri","value":"http://commons.wikimedia.org/wiki/Special:FilePath/Castello.jpg"}}
	]}}`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		assert.Contains(t, q, "EntitySearch")
		assert.Contains(t, q, `"Castello di Lerici"`)
		w.Write([]byte(payload))
	})

	desc, image, ok, err := c.EntityCard(context.Background(), "Castello di Lerici", "it")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "castello in provincia della Spezia", desc)
	assert.Contains(t, image, "Castello.jpg")
}

func TestEntityCard_NoMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"bindings":[]}}`))
	})

	_, _, ok, err := c.EntityCard(context.Background(), "Nonexistent", "en")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "Q3662776", entityID("http://www.wikidata.org/entity/Q3662776"))
	assert.Equal(t, "Q1", entityID("Q1"))
}
