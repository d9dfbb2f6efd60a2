package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultIdleTTL = 30 * time.Minute
	sweepDivisor   = 3

	minSweepInterval = time.Millisecond
)

// client is one caller's bucket and when it was last used
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TwoTierLimiter enforces a global request rate and a per-client rate.
// Per-client buckets idle longer than idleTTL are dropped by a background sweep.
type TwoTierLimiter struct {
	global      *rate.Limiter
	clientRate  rate.Limit
	clientBurst int
	clients     map[string]*client
	now         func() time.Time
	idleTTL     time.Duration
	mutex       sync.Mutex
	stop        chan struct{}
	stopOnce    sync.Once
}

// Option configures a TwoTierLimiter
type Option func(*TwoTierLimiter)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(l *TwoTierLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIdleTTL sets how long an unused client bucket is kept
func WithIdleTTL(ttl time.Duration) Option {
	return func(l *TwoTierLimiter) {
		if ttl > 0 {
			l.idleTTL = ttl
		}
	}
}

// NewTwoTierLimiter creates a limiter allowing globalPerSec requests overall and
// perClientPerSec requests per client, each with a burst equal to its rate
func NewTwoTierLimiter(globalPerSec, perClientPerSec int, opts ...Option) (Service, error) {
	l, err := newTwoTierLimiter(globalPerSec, perClientPerSec, opts...)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// newTwoTierLimiter creates the concrete implementation
func newTwoTierLimiter(globalPerSec, perClientPerSec int, opts ...Option) (*TwoTierLimiter, error) {
	if globalPerSec < 1 || perClientPerSec < 1 {
		return nil, fmt.Errorf("rate limits must be positive, got global=%d per-client=%d", globalPerSec, perClientPerSec)
	}

	l := &TwoTierLimiter{
		global:      rate.NewLimiter(rate.Limit(globalPerSec), globalPerSec),
		clientRate:  rate.Limit(perClientPerSec),
		clientBurst: perClientPerSec,
		clients:     make(map[string]*client),
		now:         time.Now,
		idleTTL:     defaultIdleTTL,
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.cleanupIdleClients()

	return l, nil
}

// Allow reports whether a request from clientID may proceed now.
// A global token taken for a request the client bucket rejects is given back.
func (l *TwoTierLimiter) Allow(clientID string) bool {
	now := l.now()

	reservation := l.global.ReserveN(now, 1)
	if !reservation.OK() || reservation.DelayFrom(now) > 0 {
		reservation.CancelAt(now)
		return false
	}

	if !l.clientLimiter(clientID, now).AllowN(now, 1) {
		reservation.CancelAt(now)
		return false
	}

	return true
}

// Wait blocks until both tiers admit a request from clientID or ctx is done.
// Tokens reserved for a wait that is abandoned are given back to both tiers.
func (l *TwoTierLimiter) Wait(ctx context.Context, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.now()
	clientReservation := l.clientLimiter(clientID, now).ReserveN(now, 1)
	globalReservation := l.global.ReserveN(now, 1)
	release := func() {
		at := l.now()
		clientReservation.CancelAt(at)
		globalReservation.CancelAt(at)
	}

	if !clientReservation.OK() || !globalReservation.OK() {
		release()
		return fmt.Errorf("rate limit for %s cannot admit a single request", clientID)
	}

	delay := clientReservation.DelayFrom(now)
	if globalDelay := globalReservation.DelayFrom(now); globalDelay > delay {
		delay = globalDelay
	}
	if delay <= 0 {
		return nil
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
		release()
		return fmt.Errorf("rate limit wait of %v for %s would exceed context deadline", delay, clientID)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		release()
		return ctx.Err()
	}
}

// Close stops the cleanup routine
func (l *TwoTierLimiter) Close() error {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
	return nil
}

// Clients returns the number of tracked client buckets
func (l *TwoTierLimiter) Clients() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.clients)
}

func (l *TwoTierLimiter) clientLimiter(clientID string, now time.Time) *rate.Limiter {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	c, ok := l.clients[clientID]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.clientRate, l.clientBurst)}
		l.clients[clientID] = c
	}
	c.lastSeen = now
	return c.limiter
}

// sweepInterval is how often idle buckets are looked for, never below minSweepInterval
func (l *TwoTierLimiter) sweepInterval() time.Duration {
	interval := l.idleTTL / sweepDivisor
	if interval < minSweepInterval {
		return minSweepInterval
	}
	return interval
}

// cleanupIdleClients periodically drops client buckets that have gone quiet
func (l *TwoTierLimiter) cleanupIdleClients() {
	ticker := time.NewTicker(l.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep(l.now())
		}
	}
}

func (l *TwoTierLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idleTTL)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	for id, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, id)
		}
	}
}
