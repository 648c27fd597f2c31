package crypto

import (
	"context"
	"runtime"
	"sync"
	"time"

	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/observability/metrics"
)

type poolTask struct {
	fn       func() error
	result   chan error
	queuedAt time.Time
}

// WorkerPool executes CPU-bound work on a fixed number of goroutines.
type WorkerPool struct {
	workers int
	queue   chan poolTask
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
}

func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan poolTask),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *WorkerPool) Workers() int {
	return p.workers
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		metrics.PasswordHashQueueWaitSeconds.Observe(time.Since(task.queuedAt).Seconds())
		metrics.PasswordHashWorkersBusy.Inc()
		err := task.fn()
		metrics.PasswordHashWorkersBusy.Dec()
		task.result <- err
	}
}

// Do blocks until fn has run on a worker or ctx is done. When ctx ends while
// fn is already running, fn still completes on its worker and its result is
// discarded.
func (p *WorkerPool) Do(ctx context.Context, fn func() error) error {
	task := poolTask{
		fn:       fn,
		result:   make(chan error, 1),
		queuedAt: time.Now(),
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return commonerrors.ErrHasherClosed
	}
	select {
	case p.queue <- task:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-task.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for running tasks to finish.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}
