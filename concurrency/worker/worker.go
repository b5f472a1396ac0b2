// Package worker runs context-aware tasks on a bounded set of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncobase/feedsync/logging/logger"
)

var (
	ErrQueueFull = errors.New("task queue is full")
	ErrStopped   = errors.New("worker pool is stopped")
)

// Task is a unit of work. ctx carries the per-task timeout.
type Task func(ctx context.Context) error

// Config represents pool configuration
type Config struct {
	MaxWorkers  int           // maximum number of workers
	QueueSize   int           // task queue size
	TaskTimeout time.Duration // timeout for single task, 0 disables
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers:  4,
		QueueSize:   64,
		TaskTimeout: 10 * time.Second,
	}
}

// Validate validates configuration
func (cfg *Config) Validate() error {
	if cfg.MaxWorkers < 1 {
		return errors.New("max workers must be greater than 0")
	}
	if cfg.QueueSize < 1 {
		return errors.New("queue size must be greater than 0")
	}
	if cfg.TaskTimeout < 0 {
		return errors.New("task timeout must be greater than or equal to 0")
	}
	return nil
}

// Metrics tracks pool's operational metrics
type Metrics struct {
	ActiveWorkers  atomic.Int64
	PendingTasks   atomic.Int64
	CompletedTasks atomic.Int64
	FailedTasks    atomic.Int64
}

type job struct {
	ctx  context.Context
	task Task
	done chan<- error
}

// Pool represents a worker pool
type Pool struct {
	maxWorkers  int
	taskTimeout time.Duration

	mu      sync.RWMutex
	stopped bool
	tasks   chan job
	wg      sync.WaitGroup

	metrics Metrics
}

// NewPool creates and starts a pool. A nil cfg uses DefaultConfig.
func NewPool(cfg *Config) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{
		maxWorkers:  cfg.MaxWorkers,
		taskTimeout: cfg.TaskTimeout,
		tasks:       make(chan job, cfg.QueueSize),
	}
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p, nil
}

// Stop drains queued tasks and waits for workers until ctx is done.
func (p *Pool) Stop(ctx context.Context) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Submit queues task without blocking.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	return p.enqueue(job{ctx: ctx, task: task})
}

func (p *Pool) enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.tasks <- j:
		p.metrics.PendingTasks.Add(1)
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs tasks on the pool and waits for all of them. Tasks that cannot
// be queued run on the caller's goroutine.
func (p *Pool) Do(ctx context.Context, tasks ...Task) error {
	results := make(chan error, len(tasks))
	for _, t := range tasks {
		if err := p.enqueue(job{ctx: ctx, task: t, done: results}); err != nil {
			results <- p.run(ctx, t)
		}
	}
	var errs []error
	for range tasks {
		if err := <-results; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.tasks {
		p.metrics.PendingTasks.Add(-1)
		p.metrics.ActiveWorkers.Add(1)
		err := p.run(j.ctx, j.task)
		p.metrics.ActiveWorkers.Add(-1)
		if j.done != nil {
			j.done <- err
		}
	}
}

func (p *Pool) run(ctx context.Context, task Task) (err error) {
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker: task panicked: %v", r)
		}
		if err != nil {
			p.metrics.FailedTasks.Add(1)
			logger.Debug(ctx, "worker task failed", logger.ErrorKey, err)
			return
		}
		p.metrics.CompletedTasks.Add(1)
	}()
	return task(ctx)
}

// GetMetrics returns the current metrics
func (p *Pool) GetMetrics() map[string]int64 {
	return map[string]int64{
		"active_workers":  p.metrics.ActiveWorkers.Load(),
		"pending_tasks":   p.metrics.PendingTasks.Load(),
		"completed_tasks": p.metrics.CompletedTasks.Load(),
		"failed_tasks":    p.metrics.FailedTasks.Load(),
	}
}

// IsIdle returns whether the pool is idle
func (p *Pool) IsIdle() bool {
	return p.metrics.ActiveWorkers.Load() == 0 && p.metrics.PendingTasks.Load() == 0
}
