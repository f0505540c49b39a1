package overpass

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/config"
	"periplo/pkg/geo"
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

func newTestRequestClient(t *testing.T) *request.Client {
	t.Helper()
	cfg := &config.RequestConfig{
		Retries: 1,
		Timeout: config.Duration(5 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(50 * time.Millisecond),
		},
	}
	return request.New(cfg, &mapCache{data: map[string][]byte{}}, tracker.New())
}

func TestClientExecute(t *testing.T) {
	const payload = `{"elements":[{"type":"node","id":7,"lat":44.07,"lon":9.91,"tags":{"name":"Castello di Lerici","historic":"castle"}}]}`

	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewClient(newTestRequestClient(t), srv.URL)
	query := TouristQuery(geo.BoundingBox{South: 44.0, West: 9.75, North: 44.15, East: 10.0})

	resp, err := c.Execute(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, resp.Elements, 1)
	assert.Equal(t, "Castello di Lerici", resp.Elements[0].Tags["name"])
	assert.True(t, strings.HasPrefix(gotBody, "[out:json]"))
}

func TestClientExecute_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	}))
	defer srv.Close()

	c := NewClient(newTestRequestClient(t), srv.URL)
	_, err := c.Execute(context.Background(), "[out:json];node(1);out;")
	assert.Error(t, err)
}

func TestQueryBBoxFormatting(t *testing.T) {
	b := geo.BoundingBox{South: 44.0, West: 9.75, North: 44.15, East: 10.0}

	for _, q := range []string{TouristQuery(b), MarineQuery(b), MunicipalityQuery(b)} {
		assert.Contains(t, q, "(44,9.75,44.15,10)")
		assert.Contains(t, q, "[timeout:50]")
	}
}
