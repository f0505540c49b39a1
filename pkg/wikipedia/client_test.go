package wikipedia

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
	c := NewClient(request.New(cfg, &mapCache{data: map[string][]byte{}}, tracker.New()))
	c.APIEndpoint = srv.URL
	return c
}

func TestSearchTerms(t *testing.T) {
	terms := SearchTerms("Golfo dei Poeti")
	assert.Contains(t, terms, "Golfo dei Poeti")
	assert.Contains(t, terms, "Golfo dei Poeti musei")
	assert.Contains(t, terms, "Golfo dei Poeti faro")

	inland := SearchTerms("Val di Vara")
	assert.NotContains(t, inland, "Val di Vara faro")
}

func TestCleanSummary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips references", "A castle.[1] Very old.[23]", "A castle. Very old."},
		{"collapses whitespace", "A  castle\n on the\thill", "A castle on the hill"},
		{"short text untouched", "Short.", "Short."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSummary(tt.in))
		})
	}

	t.Run("truncates at sentence boundary", func(t *testing.T) {
		long := "First sentence about the castle on the hill overlooking the bay. Second sentence with many more details. Third sentence that pushes the text well past the two hundred character budget for a summary, which keeps result payloads lean."
		got := CleanSummary(long)
		assert.LessOrEqual(t, len(got), summaryMaxLen)
		assert.True(t, got[len(got)-1] == '.')
	})
}

func TestExtractCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantLat float64
		wantLng float64
		wantOK  bool
	}{
		{"coord template", "Intro. {{coord|44.075|9.911|display=title}}", 44.075, 9.911, true},
		{"lat lon pair", "infobox lat = 44.05 ... lon = 9.85 end", 44.05, 9.85, true},
		{"negative values", "{{Coord|-33.85|151.21}}", -33.85, 151.21, true},
		{"nothing", "A page without coordinates.", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lng, ok := ExtractCoordinates(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.InDelta(t, tt.wantLat, lat, 1e-9)
				assert.InDelta(t, tt.wantLng, lng, 1e-9)
			}
		})
	}
}

func TestMarineRelevant(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		extract string
		want    bool
	}{
		{
			name:    "wreck page accepted",
			title:   "Mohawk Deer",
			extract: "A cargo ship that sank near Portofino, now a popular wreck dive.",
			want:    true,
		},
		{
			name:    "no underwater indicator",
			title:   "Golfo dei Poeti",
			extract: "A gulf on the Ligurian coast.",
			want:    false,
		},
		{
			name:    "surface feature title",
			title:   "Faro di Capo Verde lighthouse",
			extract: "A lighthouse marking the reef.",
			want:    false,
		},
		{
			name:    "foreign geography rejected",
			title:   "SS Atlantic wreck",
			extract: "A shipwreck in Lake Ontario near Toronto, Canada.",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, marineRelevant(tt.title, tt.extract))
		})
	}
}

func TestSearchPOIs(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("list") == "search" {
			if q.Get("srsearch") == "Lerici" {
				w.Write([]byte(`{"query":{"search":[{"title":"Castello di Lerici"}]}}`))
				return
			}
			w.Write([]byte(`{"query":{"search":[]}}`))
			return
		}
		// Page fetch.
		w.Write([]byte(`{"query":{"pages":{"42":{"title":"Castello di Lerici","extract":"A medieval castle above the harbour.[1]","coordinates":[{"lat":44.0757,"lon":9.9115}]}}}}`))
	}

	c := newTestClient(t, handler)
	bbox := geo.BoundingBox{South: 44.0, West: 9.75, North: 44.15, East: 10.0}

	pois, err := c.search(context.Background(), []string{"Lerici"}, bbox, "it", model.TypeLand)
	require.NoError(t, err)
	require.Len(t, pois, 1)

	p := pois[0]
	assert.Equal(t, "Castello di Lerici", p.Name)
	assert.Equal(t, model.SourceWikipedia, p.Source)
	assert.Equal(t, "A medieval castle above the harbour.", p.Description)
	assert.Equal(t, "it", p.Lang)
	assert.InDelta(t, 1.5, p.RelevanceScore, 1e-9)
}

func TestSummary(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("list") == "search" {
			assert.Equal(t, "10", q.Get("srlimit"))
			w.Write([]byte(`{"query":{"search":[{"title":"Castello di Lerici"}]}}`))
			return
		}
		assert.Equal(t, "extracts|pageimages", q.Get("prop"))
		w.Write([]byte(`{"query":{"pages":{"42":{"extract":"A medieval castle above the harbour.[3]","thumbnail":{"source":"https://upload.wikimedia.org/castello.jpg"}}}}}`))
	}

	c := newTestClient(t, handler)
	desc, image, ok, err := c.Summary(context.Background(), "Castello di Lerici", "it")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A medieval castle above the harbour.", desc)
	assert.Equal(t, "https://upload.wikimedia.org/castello.jpg", image)
}

func TestSummary_NoMatch(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"search":[]}}`))
	}

	c := newTestClient(t, handler)
	_, _, ok, err := c.Summary(context.Background(), "Nonexistent Place", "en")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchPOIs_OutsideBBoxSkipped(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list") == "search" {
			w.Write([]byte(`{"query":{"search":[{"title":"Far Away Castle"}]}}`))
			return
		}
		w.Write([]byte(`{"query":{"pages":{"1":{"title":"Far Away Castle","extract":"A castle.","coordinates":[{"lat":52.5,"lon":13.4}]}}}}`))
	}

	c := newTestClient(t, handler)
	bbox := geo.BoundingBox{South: 44.0, West: 9.75, North: 44.15, East: 10.0}

	pois, err := c.search(context.Background(), []string{"x"}, bbox, "en", model.TypeLand)
	require.NoError(t, err)
	assert.Empty(t, pois)
}
