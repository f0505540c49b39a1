package websearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainAllowed(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"divingportofino.it", true},
		{"lericisub.it", true},
		{"scubaworld.com", true}, // dive keyword beats unknown TLD
		{"example.com", false},
		{"facebook.com", false},
		{"divingcenter.facebook.com", false}, // exclusion wins
		{"marina.gov", false},
		{"randomsite.it", true}, // trusted coastal TLD
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainAllowed(tt.domain))
		})
	}
}

func TestIsDivingCenterResult(t *testing.T) {
	assert.True(t, isDivingCenterResult(
		"https://lericisub.it/immersioni", "Centro Sub Lerici", "immersioni sui relitti del golfo"))

	// Encyclopedia pages are not dive site listings.
	assert.False(t, isDivingCenterResult(
		"https://en.wikipedia.org/wiki/Haven", "Haven (ship)", "diving wreck"))

	// News coverage of a wreck is excluded even with diving keywords.
	assert.False(t, isDivingCenterResult(
		"https://coastalpress.it/articolo", "Notizie dal mare", "diving center apre"))

	// No diving keyword at all.
	assert.False(t, isDivingCenterResult(
		"https://hotelportofino.it", "Hotel Portofino", "camere vista mare"))
}

func TestIsSuspiciousName(t *testing.T) {
	assert.True(t, isSuspiciousName("Leggi Tutto"))
	assert.True(t, isSuspiciousName("Cookie Policy"))
	assert.True(t, isSuspiciousName("Novembre 2025"))
	assert.True(t, isSuspiciousName("ab"))
	assert.False(t, isSuspiciousName("Mohawk Deer"))
}

func TestSemanticallyRelevant(t *testing.T) {
	assert.True(t, semanticallyRelevant("Immersioni sul relitto della Mohawk Deer, scuba diving nel mare ligure"))
	// Wreck mention alone is one category out of three.
	assert.False(t, semanticallyRelevant("Il relitto fu demolito nel 1950"))
	assert.False(t, semanticallyRelevant("Hotel con vista, camere e ristorante"))
}

func TestHasWreckIndicator(t *testing.T) {
	assert.True(t, hasWreckIndicator("the ship was sunk in 1944"))
	assert.True(t, hasWreckIndicator("Relitto del Klingenberg"))
	assert.False(t, hasWreckIndicator("a lighthouse on the cape"))
}
