package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffCooldownGrows(t *testing.T) {
	b := newProviderBackoff(time.Second, 30*time.Second)

	var last time.Duration
	for i := 0; i < 4; i++ {
		b.recordFailure("overpass")
		_, until := b.state("overpass")
		d := time.Until(until)
		assert.Greater(t, d, last)
		last = d
	}

	failures, _ := b.state("overpass")
	assert.Equal(t, 4, failures)
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	b := newProviderBackoff(time.Second, 5*time.Second)

	for i := 0; i < 10; i++ {
		b.recordFailure("nominatim")
	}

	_, until := b.state("nominatim")
	// Cap plus at most 10% jitter.
	assert.LessOrEqual(t, time.Until(until), 5*time.Second+550*time.Millisecond)
}

func TestBackoffGradualRecovery(t *testing.T) {
	b := newProviderBackoff(time.Second, 60*time.Second)

	b.recordFailure("wikidata")
	b.recordFailure("wikidata")
	b.recordFailure("wikidata")

	b.recordSuccess("wikidata")
	failures, _ := b.state("wikidata")
	assert.Equal(t, 2, failures)

	b.recordSuccess("wikidata")
	b.recordSuccess("wikidata")
	failures, until := b.state("wikidata")
	assert.Equal(t, 0, failures)
	assert.True(t, until.IsZero())
}

func TestBackoffProvidersAreIsolated(t *testing.T) {
	b := newProviderBackoff(time.Second, 60*time.Second)

	b.recordFailure("wikidata")
	b.recordFailure("wikidata")

	f1, _ := b.state("wikidata")
	f2, _ := b.state("wikipedia")
	assert.Equal(t, 2, f1)
	assert.Equal(t, 0, f2)

	// A clean provider never waits.
	done := make(chan struct{})
	go func() {
		b.wait("wikipedia")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wait blocked for a provider with no failures")
	}
}
