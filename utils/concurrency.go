package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WorkerPool runs independent acquisition sessions with bounded
// concurrency. Session launches are spaced at least launchGap apart so
// parallel sessions do not hit the marketplace in the same instant.
type WorkerPool struct {
	slots   chan struct{}
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// NewWorkerPool creates a pool running at most maxWorkers jobs, launching
// one job per rateLimitMs milliseconds at most. Zero disables spacing.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	limit := rate.Inf
	if rateLimitMs > 0 {
		limit = rate.Every(time.Duration(rateLimitMs) * time.Millisecond)
	}
	return &WorkerPool{
		slots:   make(chan struct{}, maxWorkers),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Submit waits for a free slot and a launch token, then runs job in its own
// goroutine. It returns ctx.Err() without running job if ctx ends first.
func (wp *WorkerPool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	select {
	case wp.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := wp.limiter.Wait(ctx); err != nil {
		<-wp.slots
		return err
	}

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.slots }()
		job(ctx)
	}()
	return nil
}

// Wait blocks until every launched job has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// KeySet tracks the request keys with a session in flight.
type KeySet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]struct{})}
}

// Claim marks key as in flight. ok is false when another caller holds it;
// otherwise release must be called once the session ends.
func (s *KeySet) Claim(key string) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.keys[key]; held {
		return nil, false
	}
	s.keys[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.keys, key)
			s.mu.Unlock()
		})
	}, true
}

// Len reports how many keys are in flight.
func (s *KeySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
