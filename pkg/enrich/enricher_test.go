package enrich

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"periplo/pkg/config"
	"periplo/pkg/llm/mock"
	"periplo/pkg/model"
)

type fakeEncyclopedia struct {
	desc  string
	image string
	ok    bool
	err   error
	calls int
}

func (f *fakeEncyclopedia) Summary(ctx context.Context, name, lang string) (string, string, bool, error) {
	f.calls++
	return f.desc, f.image, f.ok, f.err
}

type fakeEntities struct {
	desc  string
	image string
	ok    bool
	err   error
	calls int
}

func (f *fakeEntities) EntityCard(ctx context.Context, name, lang string) (string, string, bool, error) {
	f.calls++
	return f.desc, f.image, f.ok, f.err
}

type fakeScraper struct {
	desc  string
	ok    bool
	calls int
}

func (f *fakeScraper) Scrape(ctx context.Context, name, poiType string) (string, bool) {
	f.calls++
	return f.desc, f.ok
}

func newChainEnricher(enc EncyclopediaSource, ent EntitySource, scr SiteScraper,
	provider *mock.Provider, extended bool) *Enricher {

	cfg := &config.SearchConfig{EnrichConcurrency: 2, ExtendedEnrichment: extended}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEnricher(cfg, enc, ent, scr, nil, log)
	if provider != nil {
		e.provider = provider
	}
	e.pace = time.Millisecond
	return e
}

func TestEnrichPOI_EncyclopediaWins(t *testing.T) {
	enc := &fakeEncyclopedia{desc: "A medieval castle overlooking the gulf.", image: "https://img/castle.jpg", ok: true}
	ent := &fakeEntities{desc: "castle in Liguria", ok: true}
	e := newChainEnricher(enc, ent, nil, nil, false)

	res := e.EnrichPOI(context.Background(), "Castello di Lerici", model.TypeLand)
	assert.Equal(t, "wikipedia", res.Source)
	assert.InDelta(t, 0.9, res.Confidence, 1e-6)
	assert.Equal(t, "A medieval castle overlooking the gulf.", res.Description)
	assert.Equal(t, "https://img/castle.jpg", res.ImageURL)
	// The chain stops at the first confident result.
	assert.Equal(t, 0, ent.calls)
}

func TestEnrichPOI_NoImageLowersConfidence(t *testing.T) {
	enc := &fakeEncyclopedia{desc: "A castle.", ok: true}
	e := newChainEnricher(enc, nil, nil, nil, false)

	res := e.EnrichPOI(context.Background(), "Castello", model.TypeLand)
	assert.Equal(t, "wikipedia", res.Source)
	assert.InDelta(t, 0.7, res.Confidence, 1e-6)
	assert.Empty(t, res.ImageURL)
}

func TestEnrichPOI_FallsThroughToEntities(t *testing.T) {
	enc := &fakeEncyclopedia{err: assert.AnError}
	ent := &fakeEntities{desc: "shipwreck off Punta Bianca", image: "https://img/wreck.jpg", ok: true}
	e := newChainEnricher(enc, ent, nil, nil, false)

	res := e.EnrichPOI(context.Background(), "Mohawk Deer", model.MarineWreck)
	assert.Equal(t, "wikidata", res.Source)
	assert.InDelta(t, 0.8, res.Confidence, 1e-6)
	assert.Equal(t, 1, ent.calls)
}

func TestEnrichPOI_ScraperNeedsExtendedFlag(t *testing.T) {
	scr := &fakeScraper{desc: "A reef rich in gorgonians, popular with local divers.", ok: true}

	e := newChainEnricher(&fakeEncyclopedia{}, &fakeEntities{}, scr, nil, false)
	res := e.EnrichPOI(context.Background(), "Secca del Ferale", model.MarineReef)
	assert.Equal(t, 0, scr.calls)
	assert.Equal(t, "template", res.Source)

	e = newChainEnricher(&fakeEncyclopedia{}, &fakeEntities{}, scr, nil, true)
	res = e.EnrichPOI(context.Background(), "Secca del Ferale", model.MarineReef)
	assert.Equal(t, 1, scr.calls)
	assert.Equal(t, "tourism_sites", res.Source)
	assert.InDelta(t, 0.6, res.Confidence, 1e-6)
}

func TestEnrichPOI_TemplateFallback(t *testing.T) {
	e := newChainEnricher(&fakeEncyclopedia{}, &fakeEntities{}, nil, nil, false)

	res := e.EnrichPOI(context.Background(), "Relitto Ignoto", model.MarineWreck)
	assert.Equal(t, "template", res.Source)
	assert.Less(t, res.Confidence, minConfidence)
	assert.Contains(t, res.Description, "Relitto Ignoto")
	assert.Contains(t, res.Description, "wreck")
}

func TestEnrichPOI_GenerationBeforeTemplate(t *testing.T) {
	provider := mock.New()
	provider.JSON = `{"description":"A cargo wreck resting at 32 meters."}`
	e := newChainEnricher(&fakeEncyclopedia{}, &fakeEntities{}, nil, provider, false)

	res := e.EnrichPOI(context.Background(), "Mohawk Deer", model.MarineWreck)
	assert.Equal(t, "ai_generation", res.Source)
	assert.Contains(t, res.Description, "cargo wreck")
	require.Len(t, provider.Prompts, 1)
	assert.Contains(t, provider.Prompts[0], "underwater site")
}

func TestEnrichPOIs(t *testing.T) {
	enc := &fakeEncyclopedia{desc: "A medieval castle overlooking the gulf, built in the 12th century.",
		image: "https://img/castle.jpg", ok: true}
	e := newChainEnricher(enc, nil, nil, nil, false)

	pois := []model.POI{
		{Name: "Castello di Lerici", Type: model.TypeLand},
		{Name: "Museo Navale", Type: model.TypeLand,
			Description: "A naval museum with a large collection of figureheads and models.",
			ImageURL:    "https://img/museo.jpg"},
	}

	out := e.EnrichPOIs(context.Background(), "Golfo dei Poeti", pois)
	require.Len(t, out, 2)

	assert.Contains(t, out[0].Description, "medieval castle")
	assert.Equal(t, "https://img/castle.jpg", out[0].ImageURL)
	assert.Greater(t, out[0].RelevanceScore, 0.0)
	// POIs with a description and image are left alone.
	assert.Equal(t, 1, enc.calls)
	assert.Equal(t, "https://img/museo.jpg", out[1].ImageURL)
}

func TestEnrichPOIs_ShortDescriptionReplaced(t *testing.T) {
	enc := &fakeEncyclopedia{desc: "A submerged cave with red coral formations.", ok: true}
	e := newChainEnricher(enc, nil, nil, nil, false)

	pois := []model.POI{{Name: "Grotta Azzurra", Type: model.TypeMarine,
		MarineType: model.MarineCave, Description: "short"}}
	out := e.EnrichPOIs(context.Background(), "Zona", pois)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Description, "submerged cave")
}

func TestEnrichPOIs_LookupFailureKeepsOriginal(t *testing.T) {
	enc := &fakeEncyclopedia{err: assert.AnError}
	ent := &fakeEntities{err: assert.AnError}
	e := newChainEnricher(enc, ent, nil, nil, false)

	pois := []model.POI{{Name: "Grotta Azzurra", Type: model.TypeMarine,
		MarineType: model.MarineCave, Description: "short"}}
	out := e.EnrichPOIs(context.Background(), "Zona", pois)
	require.Len(t, out, 1)
	// The template still fills in something for an effectively empty POI,
	// but the existing text survives.
	assert.Contains(t, out[0].Description, "short")
}

func TestParseDepth(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"32 m", 32},
		{"32", 32},
		{"about 40 metri", 40},
		{"100 ft", 30.48},
		{"", 0},
		{"unknown", 0},
		{"9000 m", 0}, // implausible
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseDepth(tt.in), 1e-6)
		})
	}
}

func TestMarineExtractor(t *testing.T) {
	provider := mock.New()
	provider.JSON = `{"sites":[
		{"name":"Mohawk Deer","kind":"wreck","depth":"32 m","description":"Cargo sunk in 1967"},
		{"name":"","kind":"reef"}
	]}`
	m := NewMarineExtractor(provider, slog.New(slog.NewTextHandler(io.Discard, nil)))

	sites, err := m.ExtractSites(context.Background(), "page text about relitti")
	require.NoError(t, err)
	require.Len(t, sites, 1)

	s := sites[0]
	assert.Equal(t, "Mohawk Deer", s.Name)
	assert.Equal(t, "wreck", s.Kind)
	assert.InDelta(t, 32.0, s.DepthM, 1e-6)
	assert.InDelta(t, 0.9, s.Confidence, 1e-6)
	require.Len(t, provider.Prompts, 1)
	assert.Contains(t, provider.Prompts[0], "page text about relitti")
}

func TestMarineExtractor_ProviderError(t *testing.T) {
	provider := mock.New()
	provider.Err = assert.AnError
	m := NewMarineExtractor(provider, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := m.ExtractSites(context.Background(), "text")
	assert.Error(t, err)
}
