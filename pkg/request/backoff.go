package request

import (
	"math/rand"
	"sync"
	"time"
)

// providerBackoff keeps a failure streak per provider and derives a
// cooldown from it. Providers recover one step per success instead of
// resetting outright, so a flapping upstream stays slowed down.
type providerBackoff struct {
	mu        sync.Mutex
	streaks   map[string]*streak
	baseDelay time.Duration
	maxDelay  time.Duration
}

type streak struct {
	failures int
	until    time.Time
}

func newProviderBackoff(baseDelay, maxDelay time.Duration) *providerBackoff {
	return &providerBackoff{
		streaks:   make(map[string]*streak),
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
	}
}

// wait blocks until the provider's cooldown has passed.
func (b *providerBackoff) wait(provider string) {
	b.mu.Lock()
	s := b.streaks[provider]
	var until time.Time
	if s != nil {
		until = s.until
	}
	b.mu.Unlock()

	if d := time.Until(until); d > 0 {
		time.Sleep(d)
	}
}

func (b *providerBackoff) recordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.streaks[provider]
	if s == nil {
		s = &streak{}
		b.streaks[provider] = s
	}
	s.failures++
	s.until = time.Now().Add(b.cooldown(s.failures))
}

func (b *providerBackoff) recordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.streaks[provider]
	if s == nil {
		return
	}
	if s.failures > 0 {
		s.failures--
	}
	if s.failures == 0 {
		s.until = time.Time{}
	}
}

// cooldown doubles per consecutive failure, capped at maxDelay, with
// 10% jitter so queued providers do not retry in lockstep.
func (b *providerBackoff) cooldown(failures int) time.Duration {
	d := b.baseDelay << uint(failures-1)
	if d > b.maxDelay || d <= 0 {
		d = b.maxDelay
	}
	return d + time.Duration(rand.Float64()*0.1*float64(d))
}

// state reports the current streak for a provider.
func (b *providerBackoff) state(provider string) (failures int, until time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s := b.streaks[provider]; s != nil {
		return s.failures, s.until
	}
	return 0, time.Time{}
}
