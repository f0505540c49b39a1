package request

import "testing"

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"www.wikidata.org", "wikidata"},
		{"query.wikidata.org", "wikidata"},
		{"en.wikipedia.org", "wikipedia"},
		{"it.wikipedia.org", "wikipedia"},
		{"dbpedia.org", "dbpedia"},
		{"overpass-api.de", "overpass"},
		{"overpass.kumi.systems", "overpass"},
		{"nominatim.openstreetmap.org", "nominatim"},
		{"html.duckduckgo.com", "websearch"},
		{"generativelanguage.googleapis.com", "gemini"},
		{"www.googleapis.com", "google"},
		{"other.com", "other.com"},
	}

	for _, tt := range tests {
		got := normalizeProvider(tt.host)
		if got != tt.expected {
			t.Errorf("normalizeProvider(%q) = %q; want %q", tt.host, got, tt.expected)
		}
	}
}
