package municipality

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/config"
	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/nominatim"
	"periplo/pkg/overpass"
	"periplo/pkg/poi"
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

var testPolygon = geo.Polygon{
	{43.9, 9.6}, {43.9, 10.0}, {44.2, 10.0}, {44.2, 9.6},
}

const overpassPayload = `{"elements":[
	{"type":"node","id":1,"lat":44.0755,"lon":9.9111,"tags":{"name":"Lerici","place":"town"}},
	{"type":"node","id":2,"lat":44.0810,"lon":9.9650,"tags":{"name":"Tellaro","place":"hamlet"}},
	{"type":"node","id":3,"lat":44.0930,"lon":9.8910,"tags":{"name":"San Terenzo","place":"hamlet"}},
	{"type":"node","id":4,"lat":44.1400,"lon":9.6600,"tags":{"name":"Solitario","place":"hamlet"}},
	{"type":"node","id":5,"lat":45.0000,"lon":9.9000,"tags":{"name":"Fuorizona","place":"town"}}
]}`

const nominatimPayload = `[
	{"display_name":"Porto Venere, La Spezia","name":"Porto Venere","lat":"44.0510","lon":"9.8350","class":"place","type":"town"},
	{"display_name":"Lerici, La Spezia","name":"Lerici","lat":"44.0755","lon":"9.9111","class":"place","type":"town"}
]`

func newTestDiscoverer(t *testing.T, overpassBody, nominatimBody string) *Discoverer {
	t.Helper()

	osrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(overpassBody))
	}))
	t.Cleanup(osrv.Close)

	nsrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nominatimBody))
	}))
	t.Cleanup(nsrv.Close)

	cfg := &config.RequestConfig{
		Retries: 1,
		Timeout: config.Duration(2 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(50 * time.Millisecond),
		},
	}
	rc := request.New(cfg, &mapCache{data: map[string][]byte{}}, tracker.New())

	d := NewDiscoverer(
		overpass.NewClient(rc, osrv.URL),
		overpass.NewExtractor(poi.NewValidator()),
		nominatim.NewClient(rc, nsrv.URL, 2*time.Second),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	d.pace = time.Millisecond
	return d
}

func TestDiscover(t *testing.T) {
	d := newTestDiscoverer(t, overpassPayload, nominatimPayload)

	munis := d.Discover(context.Background(), "Golfo dei Poeti", testPolygon)

	byName := make(map[string]model.Municipality)
	for _, m := range munis {
		byName[m.Name] = m
	}

	// Hamlets with a curated parent join Lerici, the rest stand alone.
	lerici, ok := byName["Lerici"]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"Tellaro", "San Terenzo"}, lerici.Subdivisions)
	assert.Equal(t, model.SourceOSM, lerici.Source)

	solitario, ok := byName["Solitario"]
	require.True(t, ok)
	assert.Empty(t, solitario.Subdivisions)

	// Nominatim supplement adds unseen towns only.
	pv, ok := byName["Porto Venere"]
	require.True(t, ok)
	assert.Equal(t, "Nominatim", pv.Source)

	// Places outside the polygon never surface.
	_, ok = byName["Fuorizona"]
	assert.False(t, ok)
}

func TestDiscover_EstimatesAndClassification(t *testing.T) {
	d := newTestDiscoverer(t, overpassPayload, nominatimPayload)

	munis := d.Discover(context.Background(), "Golfo dei Poeti", testPolygon)
	byName := make(map[string]model.Municipality)
	for _, m := range munis {
		byName[m.Name] = m
	}

	// Known estimate 90, two subdivisions, then the high-tourism boost.
	lerici := byName["Lerici"]
	assert.Equal(t, 150, lerici.POICount)
	assert.Equal(t, "high", lerici.TourismLevel)
	assert.Equal(t, "coastal", lerici.GeographicContext)

	pv := byName["Porto Venere"]
	assert.Equal(t, 120, pv.POICount)
	assert.Equal(t, "high", pv.TourismLevel)

	solitario := byName["Solitario"]
	assert.Equal(t, defaultPOIEstimate, solitario.POICount)
	assert.Equal(t, "low", solitario.TourismLevel)
	// The zone name sets the context for every municipality in it.
	assert.Equal(t, "coastal", solitario.GeographicContext)

	// Sorted by estimated POI count descending.
	assert.Equal(t, "Lerici", munis[0].Name)
}

func TestClassify_TourismMultipliers(t *testing.T) {
	tests := []struct {
		name      string
		base      int
		wantLevel string
		wantCount int
	}{
		{"Monterosso al Mare", 60, "high", 90},
		{"La Spezia", 150, "medium", 180},
		{"Borghetto", 20, "low", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.Municipality{Name: tt.name, POICount: tt.base}
			classify(&m, "Golfo dei Poeti")
			assert.Equal(t, tt.wantLevel, m.TourismLevel)
			assert.Equal(t, tt.wantCount, m.POICount)
		})
	}
}

func TestClassify_ZoneContexts(t *testing.T) {
	tests := []struct {
		zone string
		want string
	}{
		{"Parco Nazionale delle Cinque Terre", "unesco_heritage"},
		{"Golfo dei Poeti", "coastal"},
		{"Riviera di Levante", "coastal"},
		{"Parco di Montemarcello", "natural_area"},
		{"Riserva Marina di Bergeggi", "protected_area"},
		{"Entroterra", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			m := model.Municipality{Name: "Borghetto", POICount: 20}
			classify(&m, tt.zone)
			assert.Equal(t, tt.want, m.GeographicContext)
		})
	}
}

func TestDiscover_OverpassFailureDegrades(t *testing.T) {
	osrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer osrv.Close()
	nsrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nominatimPayload))
	}))
	defer nsrv.Close()

	cfg := &config.RequestConfig{
		Retries: 1,
		Timeout: config.Duration(2 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(50 * time.Millisecond),
		},
	}
	rc := request.New(cfg, &mapCache{data: map[string][]byte{}}, tracker.New())
	d := NewDiscoverer(
		overpass.NewClient(rc, osrv.URL),
		overpass.NewExtractor(poi.NewValidator()),
		nominatim.NewClient(rc, nsrv.URL, 2*time.Second),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	d.pace = time.Millisecond

	munis := d.Discover(context.Background(), "Golfo dei Poeti", testPolygon)
	names := make([]string, 0, len(munis))
	for _, m := range munis {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "Porto Venere")
	assert.Contains(t, names, "Lerici")
}

func TestSearchTerms(t *testing.T) {
	assert.Len(t, searchTerms("Golfo dei Poeti"), 3)
	assert.Equal(t, []string{"Entroterra"}, searchTerms("Entroterra"))
}

func TestFindParent_Containment(t *testing.T) {
	index := map[string]int{"lerici": 0}
	idx, ok := findParent("Lerici Borgata", index)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = findParent("Altrove", index)
	assert.False(t, ok)
}
