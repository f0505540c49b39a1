// Package enrich fills in missing POI descriptions and images. A chain
// of strategies is tried in order of trustworthiness; the first result
// confident enough wins, and a type template catches everything else.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"
	"time"

	"periplo/pkg/config"
	"periplo/pkg/llm"
	"periplo/pkg/model"
	"periplo/pkg/poi"
)

// minConfidence is the acceptance bar for a strategy result.
const minConfidence = 0.5

// minUsefulDescription is the length below which a POI's existing
// description still counts as missing.
const minUsefulDescription = 20

// sourceSpacing throttles outbound lookups during batch enrichment.
const sourceSpacing = 500 * time.Millisecond

// Result is the outcome of enriching one POI.
type Result struct {
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url,omitempty"`
	Source      string            `json:"source"`
	Confidence  float64           `json:"confidence"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// EncyclopediaSource fetches an article summary and lead image by name.
type EncyclopediaSource interface {
	Summary(ctx context.Context, name, lang string) (description, imageURL string, ok bool, err error)
}

// EntitySource fetches a structured entity description and image by name.
type EntitySource interface {
	EntityCard(ctx context.Context, name, lang string) (description, imageURL string, ok bool, err error)
}

// SiteScraper scans curated tourism and diving portals for a mention.
type SiteScraper interface {
	Scrape(ctx context.Context, name, poiType string) (description string, ok bool)
}

var promptTmpl = template.Must(template.New("enrich").Parse(
	`You are a local guide writing for visitors of {{.Zone}}.
Write a factual description of "{{.Name}}"{{if .Marine}} (an underwater site, type: {{.MarineType}}){{end}} in 2-3 sentences.
{{if .Existing}}Known so far: {{.Existing}}{{end}}
Do not invent facts. If you know nothing specific about this place, describe what a {{.Kind}} of this kind in this area typically offers.
Respond as JSON: {"description": "..."}`))

type promptData struct {
	Zone       string
	Name       string
	Marine     bool
	MarineType string
	Existing   string
	Kind       string
}

type enrichResponse struct {
	Description string `json:"description"`
}

// typeTemplates back the fallback strategy when every lookup fails.
var typeTemplates = map[string]string{
	model.MarineWreck:      "%s is a wreck dive site in this area, of interest to divers exploring the local seabed.",
	model.MarineReef:       "%s is a reef formation in this area, home to typical Mediterranean marine life.",
	model.MarineDivingSite: "%s is a diving site known to local diving centers.",
	model.MarineCave:       "%s is a submerged cave in this area, suited to experienced divers.",
	model.TypeMarine:       "%s is a marine point of interest in this area.",
	model.TypeLand:         "%s is a point of interest in this area, worth a visit when exploring the zone.",
}

// Enricher runs the enrichment strategy chain.
type Enricher struct {
	encyclopedia EncyclopediaSource
	entities     EntitySource
	scraper      SiteScraper
	provider     llm.Provider
	log          *slog.Logger

	lang        string
	concurrency int
	extended    bool

	// pacing between lookups during batch enrichment; shortened in tests
	pace time.Duration
}

// NewEnricher wires an Enricher. Every collaborator may be nil; the
// chain skips what it does not have.
func NewEnricher(cfg *config.SearchConfig, encyclopedia EncyclopediaSource, entities EntitySource,
	scraper SiteScraper, provider llm.Provider, log *slog.Logger) *Enricher {

	concurrency := cfg.EnrichConcurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Enricher{
		encyclopedia: encyclopedia,
		entities:     entities,
		scraper:      scraper,
		provider:     provider,
		log:          log,
		concurrency:  concurrency,
		extended:     cfg.ExtendedEnrichment,
		pace:         sourceSpacing,
	}
}

// SetLanguage sets the lookup language for encyclopedia and entity
// strategies. Defaults to English.
func (e *Enricher) SetLanguage(lang string) {
	e.lang = lang
}

// EnrichPOI runs the strategy chain for a single POI name and type and
// returns the best result. Never errors: when every strategy fails the
// template fallback answers.
func (e *Enricher) EnrichPOI(ctx context.Context, name, poiType string) Result {
	lang := e.lang
	if lang == "" {
		lang = "en"
	}

	if e.encyclopedia != nil {
		desc, image, ok, err := e.encyclopedia.Summary(ctx, name, lang)
		if err != nil {
			e.log.Debug("encyclopedia lookup failed", "poi", name, "error", err)
		} else if ok {
			confidence := 0.7
			if image != "" {
				confidence = 0.9
			}
			if confidence > minConfidence {
				return Result{
					Description: desc,
					ImageURL:    image,
					Source:      "wikipedia",
					Confidence:  confidence,
					Metadata:    map[string]string{"lang": lang},
				}
			}
		}
	}

	if e.entities != nil {
		desc, image, ok, err := e.entities.EntityCard(ctx, name, lang)
		if err != nil {
			e.log.Debug("entity lookup failed", "poi", name, "error", err)
		} else if ok && desc != "" {
			confidence := 0.6
			if image != "" {
				confidence = 0.8
			}
			if confidence > minConfidence {
				return Result{
					Description: desc,
					ImageURL:    image,
					Source:      "wikidata",
					Confidence:  confidence,
					Metadata:    map[string]string{"lang": lang},
				}
			}
		}
	}

	if e.extended && e.scraper != nil {
		if desc, ok := e.scraper.Scrape(ctx, name, poiType); ok {
			return Result{
				Description: desc,
				Source:      "tourism_sites",
				Confidence:  0.6,
			}
		}
	}

	if e.provider != nil {
		if desc, err := e.generate(ctx, "", name, poiType, ""); err != nil {
			e.log.Debug("generation failed", "poi", name, "error", err)
		} else if desc != "" {
			return Result{
				Description: desc,
				Source:      "ai_generation",
				Confidence:  0.55,
			}
		}
	}

	return templateResult(name, poiType)
}

// templateResult is the end of the chain: a canned description by type,
// below the acceptance bar so callers can tell it apart.
func templateResult(name, poiType string) Result {
	tmpl, ok := typeTemplates[poiType]
	if !ok {
		tmpl = typeTemplates[model.TypeLand]
	}
	return Result{
		Description: fmt.Sprintf(tmpl, name),
		Source:      "template",
		Confidence:  0.3,
	}
}

// EnrichPOIs returns the POIs with descriptions and images filled in
// where missing. Lookups are spaced out so the batch stays polite to
// the upstream APIs.
func (e *Enricher) EnrichPOIs(ctx context.Context, zoneName string, pois []model.POI) []model.POI {
	if len(pois) == 0 {
		return pois
	}

	out := make([]model.POI, len(pois))
	copy(out, pois)

	gate := time.NewTicker(e.pace)
	defer gate.Stop()

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	var enriched int
	var mu sync.Mutex

	for i := range out {
		if !needsEnrichment(&out[i]) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-gate.C:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(p *model.POI) {
			defer wg.Done()
			defer func() { <-sem }()

			kind := p.Type
			if p.MarineType != "" {
				kind = p.MarineType
			}
			res := e.EnrichPOI(ctx, p.Name, kind)

			mu.Lock()
			defer mu.Unlock()
			if res.Confidence > minConfidence || strings.TrimSpace(p.Description) == "" {
				if res.Description != "" {
					p.Description = res.Description
				}
				if p.ImageURL == "" {
					p.ImageURL = res.ImageURL
				}
				p.RelevanceScore = poi.Score(p)
				enriched++
			}
		}(&out[i])
	}
	wg.Wait()

	e.log.Info("enrichment finished", "zone", zoneName, "pois", len(out), "enriched", enriched)
	return out
}

// needsEnrichment flags POIs with no image and no usable description.
func needsEnrichment(p *model.POI) bool {
	if len(strings.TrimSpace(p.Description)) < minUsefulDescription {
		return true
	}
	return p.ImageURL == ""
}

// generate asks the LLM for a description. zoneName and existing may be
// empty.
func (e *Enricher) generate(ctx context.Context, zoneName, name, kind, existing string) (string, error) {
	marine := false
	switch kind {
	case model.MarineWreck, model.MarineReef, model.MarineDivingSite,
		model.MarineCave, model.MarineObstruction, model.MarineGeneric, model.TypeMarine:
		marine = true
	}
	if zoneName == "" {
		zoneName = "this area"
	}

	data := promptData{
		Zone:       zoneName,
		Name:       name,
		Marine:     marine,
		MarineType: kind,
		Existing:   existing,
		Kind:       kind,
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	var resp enrichResponse
	if err := e.provider.GenerateJSON(ctx, "enrichment", buf.String(), &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Description), nil
}
