// Package throttle enforces the fixed minimum spacing between calls to
// upstream hosts.
package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Waiter blocks until a call to key may proceed.
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// HostLimiter keeps one token bucket per key (usually a host name). Each
// bucket holds a single token refilled once per interval, so consecutive
// calls to the same key are at least interval apart.
type HostLimiter struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter creates a HostLimiter. An interval <= 0 disables limiting.
func NewHostLimiter(interval time.Duration) *HostLimiter {
	return &HostLimiter{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until key's bucket has a token or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, key string) error {
	if h.interval <= 0 {
		return nil
	}
	if err := h.limiter(key).Wait(ctx); err != nil {
		return eris.Wrapf(err, "throttle: wait %s", key)
	}
	return nil
}

func (h *HostLimiter) limiter(key string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(h.interval), 1)
		h.limiters[key] = l
	}
	return l
}

// Sleeper pauses for a fixed duration.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// Clock is the wall-clock Sleeper.
var Clock Sleeper = SleeperFunc(Sleep)

// NoDelay is a Sleeper that never blocks.
var NoDelay Sleeper = SleeperFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })

// Sleep waits for d or until ctx is done. d <= 0 returns immediately.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "throttle: sleep interrupted")
	}
}
