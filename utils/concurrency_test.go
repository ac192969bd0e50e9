package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeySetNoDuplicates(t *testing.T) {
	s := NewKeySet()

	added := s.Add("123")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("123")
	if added {
		t.Error("second Add of same key should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}

	if !s.Remove("123") || s.Contains("123") {
		t.Error("Remove should drop the key")
	}
}

func TestKeySetConcurrency(t *testing.T) {
	s := NewKeySet()
	var added int64

	pool := NewWorkerPool(context.Background(), 10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func(context.Context) {
			if s.Add("same") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	interval := 100 * time.Millisecond
	pool := NewWorkerPool(context.Background(), 1, interval)

	var mu sync.Mutex
	var timestamps []time.Time

	for i := 0; i < 3; i++ {
		pool.Submit(func(context.Context) {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		})
	}
	pool.Wait()

	if len(timestamps) != 3 {
		t.Fatalf("ran %d jobs, want 3", len(timestamps))
	}
	// Allow a little slack for timer granularity.
	min := interval - 10*time.Millisecond
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

func TestWorkerPoolSkipsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(ctx, 2, time.Hour)
	var ran int64
	for i := 0; i < 3; i++ {
		pool.Submit(func(context.Context) { atomic.AddInt64(&ran, 1) })
	}
	pool.Wait()

	if ran != 0 {
		t.Errorf("ran %d jobs after cancel, want 0", ran)
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: Discard()}
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: Discard()}
	sentinel := errors.New("nope")
	err := r.Do(context.Background(), "op", func(context.Context) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapping %v", err, sentinel)
	}
}
