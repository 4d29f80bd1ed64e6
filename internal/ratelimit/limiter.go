// Package ratelimit throttles flag attempts per (user, challenge)
// pair. State is process-local and resets on restart; the limiter is
// an abuse throttle, not the correctness boundary (that is the unique
// index on submissions).
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

type Config struct {
	MaxAttempts int
	Window      time.Duration
	Cooldown    time.Duration
}

type Decision struct {
	Allowed          bool
	RemainingSeconds int
}

type entry struct {
	attempts     []time.Time
	lastFailTime *time.Time
}

type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*entry
	now     func() time.Time
}

func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Key builds the map key for a user/challenge pair.
func Key(userID, challengeID string) string {
	return fmt.Sprintf("%s:%s", userID, challengeID)
}

// CheckAllowed decides whether the key may attempt a submission.
// A denial that crosses the attempt threshold stamps lastFailTime,
// so the cooldown clock starts at the denying check rather than at
// the attempt that crossed the limit. Inherited behavior, pinned by
// tests; do not "fix" without changing the tests too.
func (l *Limiter) CheckAllowed(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		return Decision{Allowed: true}
	}

	if e.lastFailTime != nil {
		elapsed := now.Sub(*e.lastFailTime)
		if elapsed < l.cfg.Cooldown {
			remaining := l.cfg.Cooldown - elapsed
			return Decision{Allowed: false, RemainingSeconds: ceilSeconds(remaining)}
		}
		e.lastFailTime = nil
	}

	// prune attempts outside the sliding window
	cutoff := now.Add(-l.cfg.Window)
	kept := e.attempts[:0]
	for _, at := range e.attempts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	e.attempts = kept

	if len(e.attempts) >= l.cfg.MaxAttempts {
		t := now
		e.lastFailTime = &t
		return Decision{Allowed: false, RemainingSeconds: ceilSeconds(l.cfg.Cooldown)}
	}

	return Decision{Allowed: true}
}

// RecordFailure logs a wrong-flag attempt for the key. It never sets
// the cooldown itself; the threshold is only enforced on the next
// CheckAllowed.
func (l *Limiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.attempts = append(e.attempts, l.now())
}

// Clear drops all limiter state for the key. Called on a correct
// submission.
func (l *Limiter) Clear(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, key)
}

func ceilSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
