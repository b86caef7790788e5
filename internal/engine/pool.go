package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kotoba-labs/kotoba-tts/internal/errs"
)

// task is one queued synthesis job: a closure to run plus the promise
// channel fulfilled either by running it or by cancellation, adapting
// japaniel-readerer/pkg/ingest.WorkerPool's Job/channel shape to carry a
// cancel flag checked at dequeue time.
type task struct {
	run       func() *SynthesisResult
	done      chan *SynthesisResult
	cancelled atomic.Bool
}

// Handle is returned by Pool.Submit, usable for Cancel/IsComplete/Wait
// per spec.md §6's submit/cancel/is_complete surface.
type Handle struct {
	t *task
}

// Cancel marks the task cancelled. If it has not yet been dequeued, the
// worker that eventually pulls it fulfills the promise with
// ERROR_CANCELLED instead of running it. Cancellation during execution is
// not honored, per spec.md §4.6/§5.
func (h *Handle) Cancel() {
	h.t.cancelled.Store(true)
}

// IsComplete reports whether the result is ready without blocking.
func (h *Handle) IsComplete() bool {
	select {
	case r, ok := <-h.t.done:
		if ok {
			// Put it back so a subsequent Wait still observes it.
			h.t.done <- r
		}
		return true
	default:
		return false
	}
}

// Wait blocks for the result.
func (h *Handle) Wait() *SynthesisResult {
	r := <-h.t.done
	h.t.done <- r
	return r
}

// Pool is a fixed-size FIFO worker pool draining synthesis jobs, adapted
// from japaniel-readerer/pkg/ingest.WorkerPool: a buffered channel of
// jobs, a sync.WaitGroup of workers, and a closeMu-guarded closed flag —
// generalized here to carry a promise and a pre-dequeue cancel flag per
// task, and to count queue depth / active workers for spec.md §4.6's
// observability requirement.
type Pool struct {
	jobs    chan *task
	wg      sync.WaitGroup
	workers int

	closeMu      sync.Mutex
	closed       bool
	shuttingDown atomic.Bool

	queueDepth atomic.Int64
	active     atomic.Int64
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 4
	}
	return &Pool{jobs: make(chan *task, queue), workers: workers}
}

// Start launches the worker goroutines. They run until ctx is cancelled
// or Shutdown closes the job channel.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.jobs:
					if !ok {
						return
					}
					p.queueDepth.Add(-1)
					if p.shuttingDown.Load() {
						t.cancelled.Store(true)
					}
					p.runTask(t)
				}
			}
		}()
	}
}

func (p *Pool) runTask(t *task) {
	if t.cancelled.Load() {
		t.done <- &SynthesisResult{Status: errs.Cancelled.String(), ErrorMessage: "request cancelled before dequeue"}
		return
	}
	p.active.Add(1)
	result := t.run()
	p.active.Add(-1)
	t.done <- result
}

// Submit enqueues a synthesis job, returning a handle the caller can
// cancel or wait on. Returns errs.ErrPoolClosed if called after Shutdown.
func (p *Pool) Submit(run func() *SynthesisResult) (*Handle, error) {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return nil, errs.ErrPoolClosed
	}
	t := &task{run: run, done: make(chan *SynthesisResult, 1)}
	p.jobs <- t
	p.queueDepth.Add(1)
	return &Handle{t: t}, nil
}

// QueueDepth reports the number of tasks currently queued (not yet
// dequeued by a worker).
func (p *Pool) QueueDepth() int64 { return p.queueDepth.Load() }

// ActiveCount reports the number of tasks currently executing.
func (p *Pool) ActiveCount() int64 { return p.active.Load() }

// Shutdown stops accepting new jobs, marks every not-yet-started queued
// task cancelled (workers fulfill them with ERROR_CANCELLED as they drain
// the queue), and joins the worker goroutines, per spec.md §5's
// termination semantics. Tasks already executing run to completion.
func (p *Pool) Shutdown() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	p.shuttingDown.Store(true)
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
}
