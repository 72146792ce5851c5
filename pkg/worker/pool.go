// Package worker implements the broker's two FIFO worker pools: the
// handler executor that drains inbound requests, and the publish executor
// that drains outbound deliveries. spec.md §5 allows either to be widened
// beyond one goroutine as long as no delivery gets starved; Pool supports
// both the single-threaded and the multi-worker case through the same type.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dbros-oss/lss-broker/pkg/logging"
)

// Task is a unit of work submitted to a Pool.
type Task func()

// Pool is a bounded FIFO task queue drained by a fixed number of
// goroutines running under an errgroup.Group, so Stop can Wait for every
// worker to finish its current (and queued) task before returning.
type Pool struct {
	mu      sync.Mutex
	tasks   chan Task
	stopped bool

	group     *errgroup.Group
	logger    *logging.Logger
	component logging.Component
}

// NewPool starts workers goroutines draining a queue of the given
// capacity. A workers value of 1 reproduces the original's single
// sequential executor.
func NewPool(workers, queueCapacity int, logger *logging.Logger, component logging.Component) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		tasks:     make(chan Task, queueCapacity),
		logger:    logger,
		component: component,
	}
	g := new(errgroup.Group)
	for i := 0; i < workers; i++ {
		g.Go(p.drain)
	}
	p.group = g
	return p
}

func (p *Pool) drain() error {
	for task := range p.tasks {
		p.runSafely(task)
	}
	return nil
}

// runSafely executes task, recovering a panic so one bad handler or hook
// can never kill a worker goroutine — the pool must keep draining.
func (p *Pool) runSafely(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(p.component, "task panicked", zap.Any("recover", r))
		}
	}()
	task()
}

// Submit enqueues task. It blocks if the queue is full — the pool has no
// backpressure signal to give the caller (spec.md §1 non-goals), so a
// submitter that cannot block should size the queue generously instead.
// Submit after Stop logs and drops the task rather than panicking on a
// closed channel.
func (p *Pool) Submit(task Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		p.logger.Warn(p.component, "submit after stop; task dropped")
		return
	}
	p.tasks <- task
}

// Stop stops accepting new tasks and waits for every queued and in-flight
// task to finish, or for ctx to expire first. Workers that are still
// running when ctx expires are left running; Stop does not cancel them.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- p.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
