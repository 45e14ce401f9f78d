package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunTimeout is the maximum duration for a single batch run.
var RunTimeout = 10 * time.Minute

// retainFinished is how long completed runs stay queryable.
var retainFinished = 5 * time.Minute

// Progress is a point-in-time snapshot of a running batch.
type Progress struct {
	RunID     string     `json:"runId"`
	Kind      ImportKind `json:"kind"`
	Total     int        `json:"total"`
	Processed int        `json:"processed"`
	Done      bool       `json:"done"`
}

// Service manages asynchronous batch runs: it starts them, fans progress
// out to subscribers, and retains results for a short window after
// completion.
type Service struct {
	engine *Engine

	// Limiter caps concurrent runs. History, when set, receives a RunRecord
	// for every settled run. Both are fixed before the first StartImport.
	Limiter *RunLimiter
	History HistoryStore

	mu   sync.RWMutex
	runs map[string]*activeRun
}

type activeRun struct {
	ID     string
	Kind   ImportKind
	Cancel context.CancelFunc
	Result *BatchResult
	Err    error
	Done   chan struct{}

	listenerMu sync.Mutex
	progress   Progress
	listeners  []chan Progress
}

// NewService creates a Service running batches on the given engine.
func NewService(engine *Engine) *Service {
	return &Service{
		engine:  engine,
		Limiter: NewRunLimiter(DefaultMaxConcurrentRuns),
		runs:    make(map[string]*activeRun),
	}
}

// StartImport begins an asynchronous batch run and returns its ID
// immediately. Use SubscribeProgress for updates and Result to block for
// the final report.
func (s *Service) StartImport(companyID uuid.UUID, kind ImportKind, rows []Row) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	if !s.Limiter.TryAcquire() {
		return "", ErrTooManyRuns
	}

	runID := uuid.New().String()
	runCtx, cancel := context.WithTimeout(context.Background(), RunTimeout)

	run := &activeRun{
		ID:     runID,
		Kind:   kind,
		Cancel: cancel,
		Done:   make(chan struct{}),
		progress: Progress{
			RunID: runID,
			Kind:  kind,
			Total: len(rows),
		},
	}

	s.mu.Lock()
	s.runs[runID] = run
	s.mu.Unlock()

	go s.process(runCtx, run, companyID, rows)

	return runID, nil
}

// process executes the batch and settles the run.
func (s *Service) process(ctx context.Context, run *activeRun, companyID uuid.UUID, rows []Row) {
	defer func() {
		run.closeListeners()
		s.Limiter.Release()
		close(run.Done)
		run.Cancel()
		s.cleanup(run.ID, retainFinished)
	}()

	logger := slog.With("run_id", run.ID, "kind", run.Kind, "rows", len(rows))
	logger.Info("import run started")

	result, err := s.engine.Run(ctx, companyID, run.Kind, rows, func(processed int) {
		run.notifyProgress(processed, false)
	})
	if err != nil {
		run.Err = err
		logger.Error("import run failed to start", "error", err)
	} else {
		run.Result = result
		s.recordRun(companyID, run.ID, result)
	}
	run.notifyProgress(len(rows), true)
}

// recordRun writes the run summary to the history store. Best-effort: the
// batch already settled, so a history failure is only logged.
func (s *Service) recordRun(companyID uuid.UUID, runID string, result *BatchResult) {
	if s.History == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec := RunRecord{
		ID:         uuid.MustParse(runID),
		CompanyID:  companyID,
		Kind:       result.Kind,
		Total:      result.Total,
		Successful: result.Successful,
		Failed:     result.Failed,
		Duplicates: result.Duplicates,
		Errors:     result.Errors,
		Duration:   result.Duration,
	}
	if err := s.History.RecordRun(ctx, rec); err != nil {
		slog.Error("record import run", "run_id", runID, "error", err)
	}
}

// RunHistory lists recent run records for a company, newest first. Returns
// nil when no history store is configured.
func (s *Service) RunHistory(ctx context.Context, companyID uuid.UUID, limit int) ([]RunRecord, error) {
	if s.History == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.History.RunHistory(ctx, companyID, limit)
}

// SubscribeProgress returns a channel receiving progress updates for a run.
// The channel is closed when the run completes.
func (s *Service) SubscribeProgress(runID string) (<-chan Progress, error) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("import run not found: %s", runID)
	}

	ch := make(chan Progress, 16)

	run.listenerMu.Lock()
	run.listeners = append(run.listeners, ch)
	// Send current state immediately so late subscribers see something.
	select {
	case ch <- run.progress:
	default:
	}
	run.listenerMu.Unlock()

	return ch, nil
}

// Result blocks until the run completes and returns its batch result, or
// the startup error when the run never got going.
func (s *Service) Result(runID string) (*BatchResult, error) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("import run not found: %s", runID)
	}

	<-run.Done

	if run.Err != nil {
		return nil, run.Err
	}
	return run.Result, nil
}

// ProgressOf returns the current progress without blocking.
func (s *Service) ProgressOf(runID string) (Progress, error) {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()

	if !ok {
		return Progress{}, fmt.Errorf("import run not found: %s", runID)
	}

	run.listenerMu.Lock()
	defer run.listenerMu.Unlock()
	return run.progress, nil
}

func (run *activeRun) notifyProgress(processed int, done bool) {
	run.listenerMu.Lock()
	defer run.listenerMu.Unlock()

	run.progress.Processed = processed
	run.progress.Done = done

	for _, ch := range run.listeners {
		select {
		case ch <- run.progress:
		default:
			// Listener is slow, skip this update.
		}
	}
}

func (run *activeRun) closeListeners() {
	run.listenerMu.Lock()
	defer run.listenerMu.Unlock()

	for _, ch := range run.listeners {
		close(ch)
	}
	run.listeners = nil
}

// cleanup drops the run from tracking after a delay.
func (s *Service) cleanup(runID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.runs, runID)
		s.mu.Unlock()
	})
}
