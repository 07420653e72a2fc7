package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultMinDelay = 4 * time.Second
	DefaultMaxDelay = 6 * time.Second
)

// Backoff waits a random duration in [min, max] on every call.
type Backoff struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBackoff returns a jittered backoff. A nil rng uses a time-seeded source.
func NewBackoff(minDelay, maxDelay time.Duration, rng *rand.Rand) *Backoff {
	if maxDelay < minDelay {
		minDelay, maxDelay = maxDelay, minDelay
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Backoff{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rng,
		sleep:    sleepContext,
	}
}

func (b *Backoff) Wait(ctx context.Context) error {
	return b.sleep(ctx, b.Next())
}

// Next draws the next delay without waiting.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.minDelay == b.maxDelay {
		return b.minDelay
	}
	delta := b.maxDelay - b.minDelay
	return b.minDelay + time.Duration(b.rng.Int63n(int64(delta)+1))
}

func (b *Backoff) SetDelay(minDelay, maxDelay time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if maxDelay < minDelay {
		minDelay, maxDelay = maxDelay, minDelay
	}
	b.minDelay = minDelay
	b.maxDelay = maxDelay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// None never waits. Useful for unattended batch tests and dry runs.
type None struct{}

func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}
