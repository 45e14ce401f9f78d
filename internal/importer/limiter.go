package importer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRuns is returned by StartImport when every run slot is occupied.
// Clients should retry after a short delay.
var ErrTooManyRuns = errors.New("too many concurrent import runs, please try again later")

// DefaultMaxConcurrentRuns bounds parallel batch runs per process.
const DefaultMaxConcurrentRuns = 4

// RunLimiter caps the number of batch runs executing at once. Each run holds
// one slot from start to settlement, so a burst of uploads degrades to
// ErrTooManyRuns instead of unbounded goroutines hammering the store.
type RunLimiter struct {
	semaphore chan struct{}

	mu     sync.RWMutex
	active int
}

// NewRunLimiter creates a limiter allowing at most maxConcurrent runs.
func NewRunLimiter(maxConcurrent int) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	return &RunLimiter{semaphore: make(chan struct{}, maxConcurrent)}
}

// TryAcquire claims a run slot without blocking. The caller must Release
// exactly once per successful claim.
func (l *RunLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release returns a previously claimed slot.
func (l *RunLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of runs currently holding a slot.
func (l *RunLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *RunLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// MaxConcurrent returns the slot capacity.
func (l *RunLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// WaitForDrain blocks until no runs hold a slot or the context ends. Used
// during shutdown so in-flight batches finish before the process exits.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
