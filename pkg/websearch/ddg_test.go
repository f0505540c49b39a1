package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/config"
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
		Timeout: config.Duration(2 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(50 * time.Millisecond),
		},
	}
	return request.New(cfg, &mapCache{data: map[string][]byte{}}, tracker.New())
}

const ddgPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Flericisub.it%2Frelitti&amp;rut=abc">Centro Sub Lerici - Immersioni sui relitti</a>
  <div class="result__snippet">Immersioni guidate sui relitti del golfo</div>
</div>
<div class="result">
  <a class="result__a" href="https://divingportofino.it/siti">Diving Portofino</a>
</div>
<div class="result">
  <a class="result__a" href="javascript:void(0)">Ads</a>
</div>
</body></html>`

func TestDDGSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "relitti Lerici", r.URL.Query().Get("q"))
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	c := NewDDGClient(newTestRequestClient(t), srv.URL)
	results, err := c.Search(context.Background(), "relitti Lerici", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://lericisub.it/relitti", results[0].URL)
	assert.Equal(t, "Centro Sub Lerici - Immersioni sui relitti", results[0].Title)
	assert.Equal(t, "Immersioni guidate sui relitti del golfo", results[0].Snippet)
	assert.Equal(t, "https://divingportofino.it/siti", results[1].URL)
}

func TestDDGSearch_MaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	c := NewDDGClient(newTestRequestClient(t), srv.URL)
	results, err := c.Search(context.Background(), "relitti", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDecodeRedirect(t *testing.T) {
	assert.Equal(t, "https://lericisub.it/relitti",
		decodeRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Flericisub.it%2Frelitti&rut=abc"))
	assert.Equal(t, "https://divingportofino.it", decodeRedirect("https://divingportofino.it"))
	assert.Equal(t, "", decodeRedirect("javascript:void(0)"))
	assert.Equal(t, "", decodeRedirect(""))
}
