package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a unit of best-effort background work.
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// Notifier is a bounded in-process outbox. Tasks run on a fixed pool of workers, each with
// its own timeout detached from the request that enqueued it. Failures are logged, never returned.
type Notifier struct {
	logger  *slog.Logger
	timeout time.Duration
	tasks   chan namedTask
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewNotifier starts workers goroutines draining a queue of queueSize tasks.
func NewNotifier(logger *slog.Logger, workers, queueSize int, timeout time.Duration) *Notifier {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	n := &Notifier{
		logger:  logger,
		timeout: timeout,
		tasks:   make(chan namedTask, queueSize),
	}
	n.wg.Add(workers)
	for range workers {
		go n.work()
	}
	return n
}

// Enqueue schedules task without blocking. It returns false when the queue is full or closed.
func (n *Notifier) Enqueue(name string, task Task) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.logger.Warn("notifier closed, dropping task", "task", name)
		return false
	}
	select {
	case n.tasks <- namedTask{name: name, run: task}:
		return true
	default:
		n.logger.Warn("notification queue full, dropping task", "task", name)
		return false
	}
}

func (n *Notifier) work() {
	defer n.wg.Done()
	for t := range n.tasks {
		n.run(t)
	}
}

func (n *Notifier) run(t namedTask) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("notification task panicked", "task", t.name, "panic", r)
		}
	}()
	if err := t.run(ctx); err != nil {
		n.logger.Warn("notification failed", "task", t.name, "err", err)
	}
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to expire.
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.tasks)
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
