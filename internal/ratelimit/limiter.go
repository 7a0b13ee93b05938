// Package ratelimit implements hourly request throttling keyed by
// endpoint and caller identity. Every call is counted twice, once per
// user and once per client IP, so logging out and back in does not
// reset the budget.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/aiohm/assistant/internal/core/domain"
)

// Endpoint names a throttled call-site category.
type Endpoint string

// Throttled endpoints and their hourly ceilings.
const (
	EndpointAPI         Endpoint = "api"
	EndpointPrivateChat Endpoint = "private_chat"
	EndpointPublicChat  Endpoint = "public_chat"
	EndpointUpload      Endpoint = "upload"
)

// DefaultCeilings returns the per-endpoint hourly request ceilings.
func DefaultCeilings() map[Endpoint]int {
	return map[Endpoint]int{
		EndpointAPI:         100,
		EndpointPrivateChat: 30,
		EndpointPublicChat:  50,
		EndpointUpload:      20,
	}
}

const window = time.Hour

// counter tracks requests inside one fixed window.
type counter struct {
	windowStart time.Time
	count       int
}

// Limiter is a fixed-window hourly rate limiter. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	ceilings map[Endpoint]int
	counters map[string]*counter

	// now is swappable for tests.
	now func() time.Time

	lastSweep time.Time
}

// New creates a limiter with the default ceilings.
func New() *Limiter {
	return NewWithCeilings(DefaultCeilings())
}

// NewWithCeilings creates a limiter with custom per-endpoint ceilings.
// Endpoints absent from the map are not throttled.
func NewWithCeilings(ceilings map[Endpoint]int) *Limiter {
	return &Limiter{
		ceilings: ceilings,
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Allow records one request for the endpoint against both the user and
// the client IP. It returns ErrRateLimited when either identity has
// reached the endpoint's ceiling; in that case neither counter is
// incremented. A zero user ID or empty IP skips that identity.
func (l *Limiter) Allow(endpoint Endpoint, userID int64, clientIP string) error {
	ceiling, throttled := l.ceilings[endpoint]
	if !throttled {
		return nil
	}

	keys := make([]string, 0, 2)
	if userID != 0 {
		keys = append(keys, fmt.Sprintf("%s|user|%d", endpoint, userID))
	}
	if clientIP != "" {
		keys = append(keys, fmt.Sprintf("%s|ip|%s", endpoint, clientIP))
	}
	if len(keys) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	for _, key := range keys {
		c := l.counters[key]
		if c == nil || now.Sub(c.windowStart) >= window {
			continue
		}
		if c.count >= ceiling {
			return fmt.Errorf("%w: %s", domain.ErrRateLimited, endpoint)
		}
	}

	for _, key := range keys {
		c := l.counters[key]
		if c == nil || now.Sub(c.windowStart) >= window {
			c = &counter{windowStart: now}
			l.counters[key] = c
		}
		c.count++
	}
	return nil
}

// Remaining reports how many requests the user identity has left in the
// current window. Unthrottled endpoints report -1.
func (l *Limiter) Remaining(endpoint Endpoint, userID int64) int {
	ceiling, throttled := l.ceilings[endpoint]
	if !throttled {
		return -1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := fmt.Sprintf("%s|user|%d", endpoint, userID)
	c := l.counters[key]
	if c == nil || l.now().Sub(c.windowStart) >= window {
		return ceiling
	}
	if c.count >= ceiling {
		return 0
	}
	return ceiling - c.count
}

// sweep drops expired windows. Runs at most once per window so the hot
// path stays cheap. Caller holds the lock.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	l.lastSweep = now
	for key, c := range l.counters {
		if now.Sub(c.windowStart) >= window {
			delete(l.counters, key)
		}
	}
}
