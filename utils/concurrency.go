package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WorkerPool runs jobs on a bounded number of goroutines, spacing job
// starts at least interval apart.
type WorkerPool struct {
	ctx       context.Context
	limiter   *rate.Limiter
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool with the given concurrency and minimum
// gap between job starts. Jobs submitted after ctx is done are skipped.
func NewWorkerPool(ctx context.Context, maxWorkers int, interval time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		ctx:       ctx,
		limiter:   NewLimiter(interval),
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// NewLimiter returns a limiter allowing one event per interval. A zero
// interval means unlimited.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func(ctx context.Context)) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		if err := wp.limiter.Wait(wp.ctx); err != nil {
			return
		}
		job(wp.ctx)
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// KeySet is a thread-safe set of string keys, used for listing ids.
type KeySet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewKeySet creates a KeySet holding the given keys.
func NewKeySet(keys ...string) *KeySet {
	s := &KeySet{seen: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.seen[k] = struct{}{}
	}
	return s
}

// Add returns true if the key was newly added, false if already present.
func (s *KeySet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Remove deletes key and reports whether it was present.
func (s *KeySet) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; !exists {
		return false
	}
	delete(s.seen, key)
	return true
}

// Contains returns true if the key is in the set.
func (s *KeySet) Contains(key string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[key]
	return exists
}

// Size returns the number of unique keys tracked.
func (s *KeySet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

// Keys returns the keys in unspecified order.
func (s *KeySet) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.seen))
	for k := range s.seen {
		out = append(out, k)
	}
	return out
}
