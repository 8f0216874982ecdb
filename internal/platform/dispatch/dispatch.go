// Package dispatch provides execution contexts. The trust gate uses a small
// worker pool for store writes and a serial queue for delivering completions
// back to the interactive context that started a send.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
)

// Executor runs submitted functions on some execution context.
type Executor interface {
	Submit(fn func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Submit(fn func()) { f(fn) }

// Inline runs functions on the caller's goroutine.
var Inline Executor = ExecutorFunc(func(fn func()) { fn() })

const defaultQueueSize = 256

// Queue executes submitted functions on the goroutines started by Run. With
// one worker, the default, functions run one at a time in submission order.
type Queue struct {
	name    string
	tasks   chan func()
	done    chan struct{}
	workers int
	logger  *slog.Logger

	// mu orders Submit's admission against stop; submitting counts callers
	// admitted before the queue stopped.
	mu         sync.RWMutex
	stopped    bool
	submitting sync.WaitGroup
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger used for task panics and late submissions.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithSize sets the submission buffer size.
func WithSize(size int) Option {
	return func(q *Queue) {
		if size > 0 {
			q.tasks = make(chan func(), size)
		}
	}
}

// WithWorkers sets how many functions may run at once. Submission order is
// only preserved with a single worker.
func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// NewQueue creates a queue. Nothing executes until Run is called.
func NewQueue(name string, opts ...Option) *Queue {
	q := &Queue{
		name:  name,
		tasks:   make(chan func(), defaultQueueSize),
		done:    make(chan struct{}),
		workers: 1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Submit enqueues fn. It blocks while the buffer is full. After the queue has
// stopped, fn runs on the caller's goroutine so accepted work is never lost.
func (q *Queue) Submit(fn func()) {
	q.mu.RLock()
	if q.stopped {
		q.mu.RUnlock()
		if q.logger != nil {
			q.logger.Warn("dispatch queue stopped, running task inline", "queue", q.name)
		}
		q.execute(fn)
		return
	}
	q.submitting.Add(1)
	q.mu.RUnlock()
	defer q.submitting.Done()

	select {
	case q.tasks <- fn:
	case <-q.done:
		q.execute(fn)
	}
}

// Run drains the queue until ctx is cancelled. Tasks accepted before the stop
// are executed before Run returns.
func (q *Queue) Run(ctx context.Context) error {
	var workers sync.WaitGroup
	for i := 1; i < q.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			q.work(ctx)
		}()
	}
	q.work(ctx)
	workers.Wait()

	q.stop()
	q.drain()
	return ctx.Err()
}

func (q *Queue) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-q.tasks:
			q.execute(fn)
		}
	}
}

func (q *Queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.stopped {
		q.stopped = true
		close(q.done)
	}
}

// drain executes buffered tasks until every submitter admitted before the
// stop has either enqueued or run its task inline.
func (q *Queue) drain() {
	idle := make(chan struct{})
	go func() {
		q.submitting.Wait()
		close(idle)
	}()
	for {
		select {
		case fn := <-q.tasks:
			q.execute(fn)
		case <-idle:
			for {
				select {
				case fn := <-q.tasks:
					q.execute(fn)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil && q.logger != nil {
			q.logger.Error("dispatch task panicked", "queue", q.name, "panic", r)
		}
	}()
	fn()
}
