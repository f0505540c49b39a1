package websearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarineParagraphs(t *testing.T) {
	page := `<html><body>
	<p>Il relitto del Mohawk Deer giace a 32 metri. Una immersione classica. Molto frequentata.</p>
	<p>Il ristorante offre cucina ligure. Le camere hanno vista mare. Parcheggio incluso.</p>
	</body></html>`

	text := MarineParagraphs(page)
	assert.Contains(t, text, "relitto del Mohawk Deer")
	assert.NotContains(t, text, "ristorante")
}

func TestMarineParagraphs_Capped(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><p>")
	for i := 0; i < 2000; i++ {
		b.WriteString("Il relitto giace su un fondale sabbioso molto esteso. ")
	}
	b.WriteString("</p></body></html>")

	text := MarineParagraphs(b.String())
	assert.LessOrEqual(t, len(text), maxExtractorText)
	assert.NotEmpty(t, text)
}

func TestValidExtractedName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Mohawk Deer", true},
		{"Secca del Ferale", true},
		{"Haven", true},
		{"Tino", false}, // too short
		{"Leggi tutto", false},
		{"http://relitti.it", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validExtractedName(tt.name))
		})
	}
}
