package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"periplo/pkg/llm"
	"periplo/pkg/websearch"
)

// extractPrompt instructs the model to pull marine sites out of page
// text. Depth comes back as free text so pages quoting ranges or units
// survive parsing.
const extractPrompt = `You are a marine archaeology assistant. From the following web page text, extract every underwater point of interest: wrecks, reefs, submerged caves, and named diving sites.
For each one return its name exactly as written, its kind (wreck, reef, cave, or diving_site), its depth if stated, and a one-sentence description based only on the text.
Ignore diving centers, boats for hire, courses, and surface attractions. If the text names no underwater site, return an empty list.
Respond as JSON: {"sites": [{"name": "...", "kind": "...", "depth": "...", "description": "..."}]}

Text:
%s`

// extractedConfidence is assigned to every site that survives
// sanitization. The model already filtered against the page text.
const extractedConfidence = 0.9

type extractResponse struct {
	Sites []struct {
		Name        string `json:"name"`
		Kind        string `json:"kind"`
		Depth       string `json:"depth"`
		Description string `json:"description"`
	} `json:"sites"`
}

// MarineExtractor pulls marine sites out of page text with the LLM
// provider. It backs enhanced-mode web extraction.
type MarineExtractor struct {
	provider llm.Provider
	log      *slog.Logger
}

// NewMarineExtractor wires a MarineExtractor.
func NewMarineExtractor(provider llm.Provider, log *slog.Logger) *MarineExtractor {
	return &MarineExtractor{provider: provider, log: log}
}

// ExtractSites implements websearch.MarineExtractor.
func (m *MarineExtractor) ExtractSites(ctx context.Context, pageText string) ([]websearch.ExtractedSite, error) {
	var resp extractResponse
	prompt := fmt.Sprintf(extractPrompt, pageText)
	if err := m.provider.GenerateJSON(ctx, "marine_extraction", prompt, &resp); err != nil {
		return nil, err
	}

	sites := make([]websearch.ExtractedSite, 0, len(resp.Sites))
	for _, s := range resp.Sites {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		sites = append(sites, websearch.ExtractedSite{
			Name:        name,
			Kind:        strings.TrimSpace(s.Kind),
			DepthM:      parseDepth(s.Depth),
			Description: strings.TrimSpace(s.Description),
			Confidence:  extractedConfidence,
		})
	}
	m.log.Debug("marine extraction finished", "sites", len(sites))
	return sites, nil
}

// parseDepth reads the leading number out of a free-text depth, with
// feet converted to meters. Returns 0 when no depth is stated.
func parseDepth(s string) float64 {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0
	}

	var num strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			num.WriteRune(r)
			continue
		}
		if num.Len() > 0 {
			break
		}
	}
	v, err := strconv.ParseFloat(num.String(), 64)
	if err != nil || v <= 0 || v >= 500 {
		return 0
	}
	if strings.Contains(s, "ft") || strings.Contains(s, "feet") || strings.Contains(s, "piedi") {
		v *= 0.3048
	}
	return v
}
