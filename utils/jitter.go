package utils

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// SleepContext blocks for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
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

// Jitter produces randomized waits: a fixed minimum plus a uniform random
// extra. It is safe for concurrent use.
type Jitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewJitter seeds a Jitter from src. A nil src seeds from the wall clock.
func NewJitter(src rand.Source) *Jitter {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Jitter{rng: rand.New(src)}
}

// Between returns a duration uniformly drawn from [min, max].
func (j *Jitter) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return min + time.Duration(j.rng.Int63n(int64(max-min)+1))
}

// Intn returns a uniform int in [0, n).
func (j *Jitter) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Intn(n)
}

// Wait sleeps for min plus up to spread of random extra, honouring ctx.
func (j *Jitter) Wait(ctx context.Context, min, spread time.Duration) error {
	return SleepContext(ctx, j.Between(min, min+spread))
}
