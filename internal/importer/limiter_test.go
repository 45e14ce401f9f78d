package importer

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRunLimiterTryAcquireRelease(t *testing.T) {
	limiter := NewRunLimiter(2)

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("initial ActiveCount = %d, want 0", got)
	}
	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}
	if got := limiter.MaxConcurrent(); got != 2 {
		t.Errorf("MaxConcurrent = %d, want 2", got)
	}

	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if !limiter.TryAcquire() {
		t.Fatal("second TryAcquire should succeed")
	}

	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if limiter.TryAcquire() {
		t.Error("TryAcquire should fail when full")
	}

	limiter.Release()

	if got := limiter.ActiveCount(); got != 1 {
		t.Errorf("after Release, ActiveCount = %d, want 1", got)
	}
	if !limiter.TryAcquire() {
		t.Error("TryAcquire should succeed after Release")
	}
}

func TestRunLimiterDefaultCapacity(t *testing.T) {
	limiter := NewRunLimiter(0)

	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentRuns {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentRuns)
	}
}

func TestRunLimiterConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewRunLimiter(maxConcurrent)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if !limiter.TryAcquire() {
				return
			}
			defer limiter.Release()

			mu.Lock()
			if current := limiter.ActiveCount(); current > maxObserved {
				maxObserved = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("observed %d concurrent holders, limit is %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after all released = %d, want 0", got)
	}
}

func TestRunLimiterWaitForDrain(t *testing.T) {
	limiter := NewRunLimiter(1)

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount = %d, want 0", got)
	}
}

func TestRunLimiterWaitForDrainTimeout(t *testing.T) {
	limiter := NewRunLimiter(1)

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); err == nil {
		t.Error("WaitForDrain should fail while a slot is held")
	}
}
