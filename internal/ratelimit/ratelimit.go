// Package ratelimit tracks per-client request history over a fixed window
// and reports the limit, remaining and reset metadata attached to every
// API response.
//
// By default the limiter is informational: every request is admitted and
// only annotated. With Config.Enforce set, a request that arrives once the
// window is full is rejected and not recorded. An optional token bucket
// (Config.BurstRPS) additionally rejects short bursts from one client.
package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aoideee/library-catalog/internal/clock"
)

// Header names set on every response.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Config controls the limiter's window and admission policy.
type Config struct {
	Limit    int           // requests allowed per window
	Window   time.Duration // length of the tracking window
	Enforce  bool          // reject requests once Limit is reached
	BurstRPS float64       // token bucket refill rate; <= 0 disables the burst guard
	Burst    int           // token bucket capacity
}

// DefaultConfig is 100 requests per 60 seconds, informational only.
func DefaultConfig() Config {
	return Config{Limit: 100, Window: time.Minute}
}

// Status is a client's usage after a call to Take or Peek.
type Status struct {
	Limit      int
	Remaining  int
	Reset      time.Time
	Allowed    bool
	RetryAfter time.Duration // set when Allowed is false
}

// Headers returns the rate-limit headers for s keyed by header name.
func (s Status) Headers() map[string]int64 {
	return map[string]int64{
		HeaderLimit:     int64(s.Limit),
		HeaderRemaining: int64(s.Remaining),
		HeaderReset:     s.Reset.Unix(),
	}
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, minimum 1.
func (s Status) RetryAfterSeconds() string {
	secs := int64((s.RetryAfter + time.Second - 1) / time.Second)
	return strconv.FormatInt(max(secs, 1), 10)
}

type client struct {
	mu       sync.Mutex
	history  []time.Time // oldest first
	burst    *rate.Limiter
	lastSeen time.Time
	removed  bool // set by Sweep once the client is dropped from the map
}

// Limiter is safe for concurrent use. The map lock is held only to find a
// client; each client's history is guarded by its own lock.
type Limiter struct {
	cfg   Config
	clock clock.Clock

	mu      sync.Mutex
	clients map[string]*client
}

func New(cfg Config, clk clock.Clock) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.BurstRPS > 0 && cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Limiter{
		cfg:     cfg,
		clock:   clk,
		clients: make(map[string]*client),
	}
}

// Take records a request from key, unless the policy rejects it, and
// returns the resulting usage.
func (l *Limiter) Take(key string) Status {
	c, now := l.lock(key)
	defer c.mu.Unlock()

	c.lastSeen = now
	c.prune(now.Add(-l.cfg.Window))

	if c.burst != nil {
		if r := c.burst.ReserveN(now, 1); r.DelayFrom(now) > 0 {
			delay := r.DelayFrom(now)
			r.CancelAt(now)
			s := l.status(c, now)
			s.RetryAfter = delay
			return s
		}
	}

	if l.cfg.Enforce && len(c.history) >= l.cfg.Limit {
		s := l.status(c, now)
		s.RetryAfter = s.Reset.Sub(now)
		return s
	}

	c.history = append(c.history, now)
	s := l.status(c, now)
	s.Allowed = true
	return s
}

// Peek returns key's usage without recording a request.
func (l *Limiter) Peek(key string) Status {
	c, now := l.lock(key)
	defer c.mu.Unlock()

	c.prune(now.Add(-l.cfg.Window))
	s := l.status(c, now)
	s.Allowed = !l.cfg.Enforce || len(c.history) < l.cfg.Limit
	return s
}

// Sweep drops clients whose history has fully expired.
func (l *Limiter) Sweep() {
	now := l.clock.Now()
	cutoff := now.Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		c.mu.Lock()
		c.prune(cutoff)
		if len(c.history) == 0 && c.lastSeen.Before(cutoff) {
			c.removed = true
			delete(l.clients, key)
		}
		c.mu.Unlock()
	}
}

// Len reports how many clients are being tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Run calls Sweep every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// lock returns key's client with its lock held, along with the current
// time read under that lock.
func (l *Limiter) lock(key string) (*client, time.Time) {
	for {
		l.mu.Lock()
		c, ok := l.clients[key]
		if !ok {
			c = &client{}
			if l.cfg.BurstRPS > 0 {
				c.burst = rate.NewLimiter(rate.Limit(l.cfg.BurstRPS), l.cfg.Burst)
			}
			l.clients[key] = c
		}
		l.mu.Unlock()

		c.mu.Lock()
		if !c.removed {
			return c, l.clock.Now()
		}
		// Swept between lookup and lock; look it up again.
		c.mu.Unlock()
	}
}

func (l *Limiter) status(c *client, now time.Time) Status {
	s := Status{
		Limit:     l.cfg.Limit,
		Remaining: max(0, l.cfg.Limit-len(c.history)),
		Reset:     now.Add(l.cfg.Window),
	}
	if len(c.history) > 0 {
		s.Reset = c.history[0].Add(l.cfg.Window)
	}
	return s
}

// prune drops timestamps at or before cutoff.
func (c *client) prune(cutoff time.Time) {
	i := 0
	for i < len(c.history) && !c.history[i].After(cutoff) {
		i++
	}
	if i > 0 {
		c.history = append(c.history[:0], c.history[i:]...)
	}
}
