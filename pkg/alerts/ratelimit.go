package alerts

import (
	"sync"
	"time"
)

const (
	// defaultMaxPerMinute is the default alert email budget per window.
	defaultMaxPerMinute = 15

	// limiterWindow is the trailing interval over which sends are counted.
	limiterWindow = time.Minute
)

// Limiter bounds how many alert emails may be sent within a trailing
// 60-second window. It keeps the timestamps of permitted sends and purges
// expired entries before every decision. A timestamp exactly 60 seconds old
// is expired (the window boundary is exclusive).
type Limiter struct {
	mu   sync.Mutex
	max  int
	sent []time.Time
}

// NewLimiter creates a Limiter allowing at most maxPerMinute sends per
// window. Values <= 0 fall back to the default of 15.
func NewLimiter(maxPerMinute int) *Limiter {
	if maxPerMinute <= 0 {
		maxPerMinute = defaultMaxPerMinute
	}
	return &Limiter{max: maxPerMinute}
}

// Allow reports whether a send at the given time is permitted. When it is,
// the time is recorded against the window. Expired entries are purged
// either way.
func (l *Limiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-limiterWindow)
	kept := l.sent[:0]
	for _, t := range l.sent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.sent = kept

	if len(l.sent) < l.max {
		l.sent = append(l.sent, now)
		return true
	}
	return false
}

// Len returns the number of sends currently counted against the window
// (for testing/metrics).
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}

// Max returns the configured per-window send budget.
func (l *Limiter) Max() int {
	return l.max
}
