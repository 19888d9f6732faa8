package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("task queue is full")

type Handler func(ctx context.Context, task Task) error

type queueConfig struct {
	handler Handler
	// nil when the queue has no concurrency ceiling
	sem chan struct{}
}

// Pool runs enqueued tasks on a fixed set of workers. Each queue may declare
// a concurrency ceiling (the orphan-cleanup queue caps at 1 so runs never
// overlap); a failing task is retried a bounded number of times and then
// dropped with an operator-visible error log.
type Pool struct {
	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	mu     sync.RWMutex
	queues map[string]queueConfig

	tasks   chan Task
	pending sync.WaitGroup
	wg      sync.WaitGroup
}

func NewPool(workers, maxRetries int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers:    workers,
		maxRetries: maxRetries,
		retryDelay: time.Second,
		logger:     logger,
		queues:     make(map[string]queueConfig),
		tasks:      make(chan Task, 256),
	}
}

// Register binds a handler to a queue. concurrency <= 0 means no ceiling.
func (p *Pool) Register(queue string, concurrency int, handler Handler) {
	cfg := queueConfig{handler: handler}
	if concurrency > 0 {
		cfg.sem = make(chan struct{}, concurrency)
	}
	p.mu.Lock()
	p.queues[queue] = cfg
	p.mu.Unlock()
}

func (p *Pool) Enqueue(task Task) (Task, error) {
	p.mu.RLock()
	_, known := p.queues[task.Queue]
	p.mu.RUnlock()
	if !known {
		return Task{}, fmt.Errorf("unknown queue %q", task.Queue)
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	p.pending.Add(1)
	select {
	case p.tasks <- task:
		return task, nil
	default:
		p.pending.Done()
		return Task{}, ErrQueueFull
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop waits until every enqueued task, including tasks fanned out by
// running handlers, has finished, then shuts the workers down. Enqueue must
// not be called after Stop.
func (p *Pool) Stop() {
	p.pending.Wait()
	close(p.tasks)
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for task := range p.tasks {
		p.runTask(ctx, task)
	}
}

func (p *Pool) runTask(ctx context.Context, task Task) {
	defer p.pending.Done()

	p.mu.RLock()
	cfg := p.queues[task.Queue]
	p.mu.RUnlock()

	if cfg.sem != nil {
		cfg.sem <- struct{}{}
		defer func() { <-cfg.sem }()
	}

	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(p.retryDelay)
			p.logger.Warn("retrying task",
				"queue", task.Queue,
				"task_id", task.ID,
				"attempt", attempt,
			)
		}
		if err = cfg.handler(ctx, task); err == nil {
			return
		}
	}

	p.logger.Error("task failed permanently",
		"queue", task.Queue,
		"task_id", task.ID,
		"attempts", p.maxRetries+1,
		"error", err,
	)
}
