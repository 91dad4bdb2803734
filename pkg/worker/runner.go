package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/pkg/logger"
)

// Worker is one unit of recurring background work
type Worker interface {
	// Name returns worker name for logging
	Name() string
	// Run executes one iteration of work
	Run(ctx context.Context) error
}

// Option configures a PeriodicWorker
type Option func(*PeriodicWorker)

// WithImmediateRun makes the worker run once as soon as it starts instead of
// waiting for the first tick
func WithImmediateRun() Option {
	return func(pw *PeriodicWorker) {
		pw.immediate = true
	}
}

// PeriodicWorker runs a Worker on a fixed interval until its context ends
type PeriodicWorker struct {
	worker    Worker
	interval  time.Duration
	immediate bool
	wg        sync.WaitGroup
	name      string

	mu         sync.Mutex
	iterations int
	failures   int
}

// NewPeriodicWorker creates new periodic worker
func NewPeriodicWorker(worker Worker, interval time.Duration, opts ...Option) *PeriodicWorker {
	pw := &PeriodicWorker{
		worker:   worker,
		interval: interval,
		name:     worker.Name(),
	}
	for _, opt := range opts {
		opt(pw)
	}
	return pw
}

// Start launches the worker loop
func (pw *PeriodicWorker) Start(ctx context.Context) {
	pw.wg.Add(1)
	go pw.run(ctx)
}

// Stop waits for the loop to exit, giving up after timeout.
// Returns false on timeout.
func (pw *PeriodicWorker) Stop(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		pw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("worker stopped", zap.String("worker", pw.name))
		return true
	case <-time.After(timeout):
		logger.Warn("worker stop timeout", zap.String("worker", pw.name))
		return false
	}
}

// Stats returns how many iterations ran and how many of them failed
func (pw *PeriodicWorker) Stats() (iterations, failures int) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.iterations, pw.failures
}

func (pw *PeriodicWorker) run(ctx context.Context) {
	defer pw.wg.Done()

	logger.Info("worker started",
		zap.String("worker", pw.name),
		zap.Duration("interval", pw.interval),
		zap.Bool("immediate", pw.immediate),
	)

	if pw.immediate {
		pw.execute(ctx)
	}

	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopping", zap.String("worker", pw.name))
			return
		case <-ticker.C:
			pw.execute(ctx)
		}
	}
}

func (pw *PeriodicWorker) execute(ctx context.Context) {
	err := pw.worker.Run(ctx)

	pw.mu.Lock()
	pw.iterations++
	if err != nil {
		pw.failures++
	}
	pw.mu.Unlock()

	// a failed iteration never stops the loop
	if err != nil {
		logger.Error("worker execution failed",
			zap.String("worker", pw.name),
			zap.Error(err),
		)
	}
}

// WorkerGroup manages multiple workers with graceful shutdown
type WorkerGroup struct {
	workers []*PeriodicWorker
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewWorkerGroup creates new worker group
func NewWorkerGroup(ctx context.Context) *WorkerGroup {
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerGroup{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a worker. Workers added after Start are not started.
func (wg *WorkerGroup) Add(worker Worker, interval time.Duration, opts ...Option) *PeriodicWorker {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	pw := NewPeriodicWorker(worker, interval, opts...)
	wg.workers = append(wg.workers, pw)
	return pw
}

// Len returns the number of registered workers
func (wg *WorkerGroup) Len() int {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	return len(wg.workers)
}

// Start starts all workers
func (wg *WorkerGroup) Start() {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	for _, w := range wg.workers {
		w.Start(wg.ctx)
	}

	logger.Info("worker group started", zap.Int("workers", len(wg.workers)))
}

// Stop cancels every worker and waits up to timeout for each
func (wg *WorkerGroup) Stop(timeout time.Duration) {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	logger.Info("stopping worker group...", zap.Int("workers", len(wg.workers)))
	wg.cancel()

	for _, w := range wg.workers {
		w.Stop(timeout)
	}

	logger.Info("worker group stopped")
}
