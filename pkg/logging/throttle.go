package logging

import (
	"log/slog"
	"sync"
	"time"
)

// throttleWindow is how long a repeated message stays suppressed.
const throttleWindow = 30 * time.Second

// Throttler suppresses repeats of the same message within a time window.
// Providers emit the same warning for every element of a batch; the
// throttler keeps the request log readable. Errors are never throttled.
type Throttler struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewThrottler creates a Throttler.
func NewThrottler() *Throttler {
	return &Throttler{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// allow reports whether the message may be logged, recording it if so.
func (t *Throttler) allow(msg string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.seen[msg]; ok && now.Sub(last) < throttleWindow {
		return false
	}
	t.seen[msg] = now

	// Opportunistic cleanup of stale entries.
	if len(t.seen) > 256 {
		for k, v := range t.seen {
			if now.Sub(v) >= throttleWindow {
				delete(t.seen, k)
			}
		}
	}
	return true
}

// Info logs at INFO level, suppressing repeats within the window.
func (t *Throttler) Info(msg string, args ...any) {
	if t.allow(msg) {
		slog.Info(msg, args...)
	}
}

// Warn logs at WARN level, suppressing repeats within the window.
func (t *Throttler) Warn(msg string, args ...any) {
	if t.allow(msg) {
		slog.Warn(msg, args...)
	}
}

// Error logs at ERROR level. Errors always pass through.
func (t *Throttler) Error(msg string, args ...any) {
	slog.Error(msg, args...)
}
