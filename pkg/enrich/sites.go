package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"periplo/pkg/model"
	"periplo/pkg/request"
	"periplo/pkg/websearch"
)

// tourismPortals are the curated portals scanned by the extended
// strategy, keyed by the POI kinds they cover.
var tourismPortals = []struct {
	url    string
	marine bool
}{
	{"https://www.lamialiguria.it/en/", false},
	{"https://www.parks.it/indice/mare.php", false},
	{"https://www.divingmap.eu/", true},
	{"https://map.openseamap.org/", true},
	{"https://www.archeomar.it/", true},
}

const portalFetchTimeout = 8 * time.Second

// PortalScraper scans tourism and diving portals for a POI mention and
// assembles a description from the surrounding text.
type PortalScraper struct {
	request *request.Client
	log     *slog.Logger
}

// NewPortalScraper wires a PortalScraper.
func NewPortalScraper(r *request.Client, log *slog.Logger) *PortalScraper {
	return &PortalScraper{request: r, log: log}
}

// Scrape checks each portal covering the POI kind for a mention of the
// name. The first portal that mentions it yields the description.
func (s *PortalScraper) Scrape(ctx context.Context, name, poiType string) (string, bool) {
	marine := poiType != model.TypeLand && poiType != ""

	for _, portal := range tourismPortals {
		if portal.marine != marine {
			continue
		}
		fetchCtx, cancel := context.WithTimeout(ctx, portalFetchTimeout)
		body, err := s.request.Get(fetchCtx, portal.url, "")
		cancel()
		if err != nil {
			s.log.Debug("portal fetch failed", "url", portal.url, "error", err)
			continue
		}

		text := websearch.PageText(string(body))
		if desc := mentionContext(text, name); desc != "" {
			return desc, true
		}
	}
	return "", false
}

// mentionContext returns the sentences around the first mention of
// name, empty when the text never mentions it.
func mentionContext(text, name string) string {
	lower := strings.ToLower(text)
	pos := strings.Index(lower, strings.ToLower(name))
	if pos < 0 {
		return ""
	}

	start := strings.LastIndex(lower[:pos], ". ")
	if start < 0 {
		start = 0
	} else {
		start += 2
	}
	end := pos + 300
	if end > len(text) {
		end = len(text)
	}
	if idx := strings.Index(lower[pos:end], ". "); idx > 0 {
		end = pos + idx + 1
	}

	desc := strings.TrimSpace(text[start:end])
	if len(desc) < 30 {
		return ""
	}
	return desc
}
