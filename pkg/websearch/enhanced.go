package websearch

import (
	"context"
	"strings"
)

// ExtractedSite is one marine site pulled out of a page by an
// LLM-backed extractor.
type ExtractedSite struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	DepthM      float64 `json:"depth,omitempty"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// MarineExtractor pulls marine sites out of filtered page text. Used in
// enhanced mode in place of pattern extraction.
type MarineExtractor interface {
	ExtractSites(ctx context.Context, pageText string) ([]ExtractedSite, error)
}

// Extracted sites below this confidence are discarded.
const minExtractConfidence = 0.3

// Feeding a whole page to the extractor wastes tokens on navigation
// and boilerplate; only this much filtered text goes in.
const maxExtractorText = 15000

// marineTextKeywords select the paragraphs worth sending to the
// extractor.
var marineTextKeywords = []string{
	"relitto", "wreck", "épave", "pecio", "wrack",
	"immersione", "diving", "dive", "plongée", "tauchen",
	"secca", "reef", "shoal", "scoglio",
	"profondità", "depth", "profondeur", "tiefe",
	"fondale", "seabed", "subacque", "underwater", "sommerso",
	"grotta", "cave", "grotte",
}

// MarineParagraphs reduces a page to the paragraphs that talk about
// marine features, capped so extractor prompts stay bounded.
func MarineParagraphs(content string) string {
	text := PageText(content)

	var b strings.Builder
	for _, para := range splitParagraphs(text) {
		lower := strings.ToLower(para)
		keep := false
		for _, kw := range marineTextKeywords {
			if strings.Contains(lower, kw) {
				keep = true
				break
			}
		}
		if !keep {
			continue
		}
		if b.Len()+len(para)+1 > maxExtractorText {
			break
		}
		b.WriteString(para)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// splitParagraphs chunks flattened page text into sentence groups. Tag
// stripping loses the original paragraph breaks, so sentences are
// regrouped in threes.
func splitParagraphs(text string) []string {
	sentences := strings.Split(text, ". ")
	var paras []string
	for i := 0; i < len(sentences); i += 3 {
		end := i + 3
		if end > len(sentences) {
			end = len(sentences)
		}
		para := strings.TrimSpace(strings.Join(sentences[i:end], ". "))
		if para != "" {
			paras = append(paras, para)
		}
	}
	return paras
}

// validExtractedName rejects the site chrome an extractor sometimes
// mistakes for names.
func validExtractedName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) <= 4 {
		return false
	}
	if strings.ContainsAny(name, `/\@#%`) || strings.HasPrefix(strings.ToLower(name), "http") {
		return false
	}
	return !isSuspiciousName(name)
}
