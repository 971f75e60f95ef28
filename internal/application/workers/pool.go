package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/aescanero/tripplanner/pkg/ports"
	"go.uber.org/zap"
)

// ErrPoolStopped is returned for tasks submitted after Shutdown.
var ErrPoolStopped = errors.New("worker pool is shut down")

// Task is a unit of work run by the pool. It must return promptly once ctx
// is done.
type Task[T any] func(ctx context.Context) (T, error)

// Pool bounds the number of concurrently running tasks
type Pool struct {
	size    int
	slots   chan struct{}
	busy    atomic.Int64
	metrics ports.MetricsCollector
	logger  *zap.Logger
	health  *HealthMonitor

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// PoolStatus is a snapshot of slot usage
type PoolStatus struct {
	Size    int
	Busy    int
	Stopped bool
}

// Idle returns the number of free slots.
func (s PoolStatus) Idle() int {
	if s.Stopped {
		return 0
	}
	return s.Size - s.Busy
}

// NewPool creates a new worker pool with size concurrent slots
func NewPool(
	size int,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	healthCheckInterval time.Duration,
) *Pool {
	if size < 1 {
		size = 1
	}

	pool := &Pool{
		size:    size,
		slots:   make(chan struct{}, size),
		metrics: metrics,
		logger:  logger,
	}

	pool.health = NewHealthMonitor(pool, healthCheckInterval, logger)

	return pool
}

// Start starts the pool's health monitor
func (p *Pool) Start() error {
	p.logger.Info("starting worker pool", zap.Int("size", p.size))
	p.health.Start()
	return nil
}

// Health returns the pool's health monitor
func (p *Pool) Health() *HealthMonitor {
	return p.health
}

// Shutdown refuses new tasks and waits for running and abandoned tasks to
// return, up to ctx's deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.logger.Info("shutting down worker pool")

	p.health.Stop()

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shut down complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %d tasks still running", p.busy.Load())
	}
}

// Status returns the current slot usage
func (p *Pool) Status() PoolStatus {
	p.mu.RLock()
	stopped := p.stopped
	p.mu.RUnlock()

	return PoolStatus{
		Size:    p.size,
		Busy:    int(p.busy.Load()),
		Stopped: stopped,
	}
}

// track registers a task goroutine unless the pool is stopped.
func (p *Pool) track() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}
	p.wg.Add(1)
	return true
}

// Run executes task on its own goroutine and waits at most timeout for it.
// On timeout, or when ctx is done first, it returns a failed outcome wrapping
// domain.ErrSubTaskTimeout immediately; the task's context is cancelled but
// the goroutine is left to observe that on its own.
func Run[T any](ctx context.Context, p *Pool, name string, timeout time.Duration, task Task[T]) Outcome[T] {
	startTime := time.Now()

	if !p.track() {
		out := Failure[T](&domain.SubTaskError{Task: name, Err: ErrPoolStopped})
		p.record(name, out, startTime)
		return out
	}

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Outcome[T], 1)
	go func() {
		defer p.wg.Done()

		// Waiting for a slot counts against the task's own deadline.
		select {
		case p.slots <- struct{}{}:
		case <-taskCtx.Done():
			return
		}
		p.busy.Add(1)
		defer func() {
			p.busy.Add(-1)
			<-p.slots
		}()

		done <- execute(taskCtx, name, task)
	}()

	var out Outcome[T]
	select {
	case out = <-done:
		// A task that gave up because its context ended is a timeout, not an error.
		if !out.OK() && taskCtx.Err() != nil {
			out = Failure[T](timeoutError(name, timeout))
		}
	case <-taskCtx.Done():
		out = Failure[T](timeoutError(name, timeout))
	}

	p.record(name, out, startTime)
	return out
}

// execute runs task and converts errors and panics into outcomes
func execute[T any](ctx context.Context, name string, task Task[T]) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure[T](&domain.SubTaskError{Task: name, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	value, err := task(ctx)
	if err != nil {
		var subTaskErr *domain.SubTaskError
		if errors.As(err, &subTaskErr) {
			return Failure[T](err)
		}
		return Failure[T](&domain.SubTaskError{Task: name, Err: err})
	}

	return Success(value)
}

func timeoutError(name string, timeout time.Duration) error {
	return fmt.Errorf("sub-task %s: %w (limit %s)", name, domain.ErrSubTaskTimeout, timeout)
}

type reportable interface {
	Status() string
	Err() error
}

// record logs and reports the outcome of a task
func (p *Pool) record(name string, out reportable, startTime time.Time) {
	duration := time.Since(startTime)
	status := out.Status()

	p.metrics.RecordSubTask(name, status, duration)

	if status == StatusSuccess {
		p.logger.Debug("sub-task completed",
			zap.String("task", name),
			zap.Duration("duration", duration))
		return
	}

	p.logger.Warn("sub-task failed",
		zap.String("task", name),
		zap.String("status", status),
		zap.Duration("duration", duration),
		zap.Error(out.Err()))
}
