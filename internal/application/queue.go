package application

import (
	"context"
	"fmt"
	"sync"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Task is one unit of work run against the session
type Task func(ctx context.Context) (interface{}, error)

type queuedTask struct {
	ctx    context.Context
	run    Task
	result chan taskResult
}

type taskResult struct {
	value interface{}
	err   error
}

// QueryQueue struct - strict FIFO executor with a concurrency of one.
// There is no priority, deadline or dropping: a stalled task delays everything behind it.
type QueryQueue struct {
	mu       sync.Mutex
	tasks    []*queuedTask
	inFlight int
	closed   bool

	wake    chan struct{}
	done    chan struct{}
	limiter *rate.Limiter
	metrics output.Metrics
}

// QueueOption configures a QueryQueue
type QueueOption func(*QueryQueue)

// WithRateLimit paces task starts to perSecond, bursting one. Zero or less disables pacing.
func WithRateLimit(perSecond float64) QueueOption {
	return func(q *QueryQueue) {
		if perSecond > 0 {
			q.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithQueueMetrics reports depth and in-flight count
func WithQueueMetrics(m output.Metrics) QueueOption {
	return func(q *QueryQueue) {
		if m != nil {
			q.metrics = m
		}
	}
}

// NewQueryQueue func - Creates the queue and starts its worker
func NewQueryQueue(opts ...QueueOption) *QueryQueue {
	q := &QueryQueue{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		metrics: output.NopMetrics{},
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.work()
	return q
}

// Enqueue appends task and blocks until it has run. The task's failure is returned as is;
// it does not affect the tasks behind it.
func (q *QueryQueue) Enqueue(ctx context.Context, task Task) (interface{}, error) {
	t := &queuedTask{ctx: ctx, run: task, result: make(chan taskResult, 1)}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, domain.ErrQueueClosed
	}
	q.tasks = append(q.tasks, t)
	q.report()
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	r := <-t.result
	return r.value, r.err
}

// Size returns the number of tasks waiting
func (q *QueryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Pending returns the number of tasks running, zero or one
func (q *QueryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Close stops accepting tasks and fails the ones still waiting. The running task completes.
func (q *QueryQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	waiting := q.tasks
	q.tasks = nil
	q.report()
	q.mu.Unlock()

	close(q.done)
	for _, t := range waiting {
		t.result <- taskResult{err: domain.ErrQueueClosed}
	}
}

func (q *QueryQueue) work() {
	for {
		t := q.next()
		if t == nil {
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		t.result <- q.execute(t)

		q.mu.Lock()
		q.inFlight = 0
		q.report()
		q.mu.Unlock()
	}
}

// next pops the head of the queue and marks it in flight
func (q *QueryQueue) next() *queuedTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	q.inFlight = 1
	q.report()
	logrus.Infof("Queue: %d waiting, %d processing", len(q.tasks), q.inFlight)
	return t
}

func (q *QueryQueue) execute(t *queuedTask) (res taskResult) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Queued task panicked: %v", r)
			res = taskResult{err: fmt.Errorf("%w: task panicked: %v", domain.ErrBackendQuery, r)}
		}
	}()
	if q.limiter != nil {
		if err := q.limiter.Wait(t.ctx); err != nil {
			return taskResult{err: err}
		}
	}
	v, err := t.run(t.ctx)
	return taskResult{value: v, err: err}
}

// report must be called with mu held
func (q *QueryQueue) report() {
	q.metrics.SetQueue(len(q.tasks), q.inFlight)
}

// Submit runs task on the queue and returns its typed result
func Submit[T any](ctx context.Context, q *QueryQueue, task func(ctx context.Context) (T, error)) (T, error) {
	v, err := q.Enqueue(ctx, func(ctx context.Context) (interface{}, error) {
		return task(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := v.(T)
	return value, nil
}
