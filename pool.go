// Package taskpool provides a dynamic, prioritized worker pool for
// concurrent job processing.
//
// The pool supports:
//   - Two worker classes, ordinary and priority, sharing one job queue
//   - Elastic growth of the ordinary worker set up to a configured maximum
//   - FIFO delivery within each class, with priority jobs also reachable
//     from the ordinary side so they are never starved
//   - Graceful, blocking shutdown via Free
package taskpool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// JobFunc is the work performed for each submitted job. It receives the
// per-submission data and the pool-wide opaque value fixed at New, and
// returns nothing — retrying, reporting, and result collection are the
// caller's concern, not the pool's (see spec §7: "no automatic retry").
//
// F must never call Free on its own pool: Free blocks until every worker
// (including the one currently running F) has exited, so a self-Free
// deadlocks.
type JobFunc[T any] func(data T, opaque any)

// Pool is a dynamic, prioritized worker pool. Ordinary workers consume jobs
// from the head of the queue in submission order; priority workers consume
// only priority-eligible jobs via the firstPrio cursor, so a priority job
// never waits behind a long prefix of ordinary work even when every
// ordinary worker is busy. See job.go for the queue itself.
type Pool[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond // ordinary workers wait here
	prioCond *sync.Cond // priority workers wait here
	quitCond *sync.Cond // Free waits here for drain

	queue JobQueue[T]

	jobFunc  JobFunc[T]
	funcName string
	opaque   any

	minWorkers  int
	maxWorkers  int
	nWorkers    int
	freeWorkers int

	nPrioWorkers int

	quit bool

	logger         *logrus.Logger
	metricsEnabled bool
	panicHandler   func(priority int, recovered any)
	counters       metricsCounters

	// spawnErr, when non-nil, is returned by spawnLocked instead of starting a
	// goroutine. It exists solely so tests can exercise the resource-
	// exhaustion path without actually exhausting anything — a real `go`
	// statement cannot fail the way pthread_create can, so this is the
	// Go-shaped analogue of a forced spawn failure.
	spawnErr error
}

// New constructs a Pool, spawning minWorkers ordinary workers and
// prioWorkers priority workers up front. minWorkers is clamped to
// maxWorkers. Returns an error (rather than the C original's partially
// constructed-then-freed pool) if any initial worker cannot be spawned.
func New[T any](minWorkers, maxWorkers, prioWorkers int, f JobFunc[T], funcName string, opaque any, opts ...Option[T]) (*Pool[T], error) {
	if minWorkers < 0 || maxWorkers < 0 || prioWorkers < 0 {
		return nil, ErrInvalidConfig
	}
	if minWorkers > maxWorkers {
		minWorkers = maxWorkers
	}

	p := &Pool[T]{
		jobFunc:    f,
		funcName:   funcName,
		opaque:     opaque,
		minWorkers: minWorkers,
		maxWorkers: maxWorkers,
		logger:     defaultLogger(),
	}
	p.cond = sync.NewCond(&p.mu)
	p.prioCond = sync.NewCond(&p.mu)
	p.quitCond = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.expandLocked(minWorkers, false); err != nil {
		p.quit = true // nothing has drained yet, but nothing was spawned either
		return nil, fmt.Errorf("%w: %v", ErrWorkerSpawnFailed, err)
	}

	if prioWorkers > 0 {
		if err := p.expandLocked(prioWorkers, true); err != nil {
			p.quit = true
			return nil, fmt.Errorf("%w: %v", ErrWorkerSpawnFailed, err)
		}
	}

	return p, nil
}

// expandLocked grows the chosen worker class by gain, spawning each worker
// bound to its class's condition variable. The caller must hold p.mu — the
// newly spawned workers will contend for it on entry, which is the intended
// serialization point for the first iteration of their loop. If a spawn
// fails partway through, the counters already reflect exactly the workers
// that did start, so no separate rollback bookkeeping is needed.
func (p *Pool[T]) expandLocked(gain int, priority bool) error {
	for i := 0; i < gain; i++ {
		if err := p.spawnLocked(priority); err != nil {
			p.logger.WithFields(p.logFields()).WithField("priority", priority).WithError(err).Warn("taskpool: worker expansion failed")
			return err
		}
	}
	return nil
}

func (p *Pool[T]) spawnLocked(priority bool) error {
	if p.spawnErr != nil {
		return p.spawnErr
	}

	if priority {
		p.nPrioWorkers++
	} else {
		p.nWorkers++
	}

	go p.worker(priority)

	if p.metricsEnabled && !priority {
		atomic.AddInt64(&p.counters.expansions, 1)
	}

	p.logger.WithFields(p.logFields()).WithField("priority", priority).Debug("taskpool: worker spawned")
	return nil
}

// Submit enqueues a job. If the queue is already at least as deep as the
// number of parked ordinary workers and the pool has room to grow, one additional
// ordinary worker is spawned before the job is linked in — admission is
// computed from queue depth as it stood before this submission. Submit
// never blocks on capacity: the queue itself is unbounded.
func (p *Pool[T]) Submit(priority int, data T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.quit {
		if p.metricsEnabled {
			atomic.AddInt64(&p.counters.rejected, 1)
		}
		return ErrPoolShuttingDown
	}

	// Signed comparison, per spec §4.3/§9: freeWorkers and depth are both
	// non-negative counts, but the admission test must not be done as an
	// unsigned subtraction (the C original's freeWorkers - depth <= 0 only
	// "happens" to work because of the combined condition).
	if p.freeWorkers <= p.queue.len() && p.nWorkers < p.maxWorkers {
		if err := p.expandLocked(1, false); err != nil {
			if p.metricsEnabled {
				atomic.AddInt64(&p.counters.rejected, 1)
			}
			return fmt.Errorf("%w: %v", ErrWorkerSpawnFailed, err)
		}
	}

	p.queue.enqueue(priority, data)
	if p.metricsEnabled {
		atomic.AddInt64(&p.counters.submitted, 1)
	}

	p.cond.Signal()
	if priority > 0 && p.nPrioWorkers > 0 {
		p.prioCond.Signal()
	}

	return nil
}

// worker is the loop shared by ordinary and priority workers, parameterized
// only by which side of the queue it drains and which condition variable it
// waits on.
func (p *Pool[T]) worker(priority bool) {
	cond := p.cond
	if priority {
		cond = p.prioCond
	}

	p.mu.Lock()
	for {
		for !p.quit && classEmpty(p, priority) {
			if !priority {
				p.freeWorkers++
			}
			cond.Wait()
			if !priority {
				p.freeWorkers--
			}
		}

		if p.quit {
			break
		}

		var job *Job[T]
		if priority {
			job = p.queue.popFirstPrio()
		} else {
			job = p.queue.popOldest()
		}

		p.mu.Unlock()
		p.runJob(job)
		p.mu.Lock()
	}

	if priority {
		p.nPrioWorkers--
	} else {
		p.nWorkers--
	}
	if p.nWorkers == 0 && p.nPrioWorkers == 0 {
		p.quitCond.Signal()
	}
	p.mu.Unlock()

	p.logger.WithFields(p.logFields()).WithField("priority", priority).Debug("taskpool: worker exited")
}

func classEmpty[T any](p *Pool[T], priority bool) bool {
	if priority {
		return p.queue.firstPrio == nil
	}
	return p.queue.head == nil
}

// runJob invokes F outside the pool mutex, recovering any panic so a single
// bad job function never takes a worker — or the pool — down.
func (p *Pool[T]) runJob(job *Job[T]) {
	defer func() {
		if r := recover(); r != nil {
			if p.metricsEnabled {
				atomic.AddInt64(&p.counters.panicked, 1)
			}
			if p.panicHandler != nil {
				p.panicHandler(job.Priority, r)
			} else {
				p.logger.WithFields(p.logFields()).WithField("priority", job.Priority).WithField("recovered", r).Error("taskpool: job function panicked")
			}
		}
		if p.metricsEnabled {
			atomic.AddInt64(&p.counters.completed, 1)
		}
	}()
	p.jobFunc(job.Data, p.opaque)
}

// Free sets quit, wakes every waiting worker, and blocks until all of them
// have exited and drained their in-flight job. Jobs already popped from the
// queue run to completion even after Free is called; jobs still queued are
// discarded without running F (their Data is not touched — the producer
// owns data it never saw executed). Idempotent and safe to call on a nil
// *Pool.
func (p *Pool[T]) Free() {
	if p == nil {
		return
	}

	p.mu.Lock()
	p.quit = true
	if p.nWorkers > 0 {
		p.cond.Broadcast()
	}
	if p.nPrioWorkers > 0 {
		p.prioCond.Broadcast()
	}

	for p.nWorkers > 0 || p.nPrioWorkers > 0 {
		p.quitCond.Wait()
	}

	p.queue.drain()
	p.mu.Unlock()

	p.logger.WithFields(p.logFields()).Debug("taskpool: pool drained")
}

// GetMinWorkers returns the configured minimum ordinary worker count.
func (p *Pool[T]) GetMinWorkers() int {
	return p.minWorkers
}

// GetMaxWorkers returns the configured maximum ordinary worker count.
func (p *Pool[T]) GetMaxWorkers() int {
	return p.maxWorkers
}

// GetPriorityWorkers returns the number of currently live priority workers,
// not the configured target — matching virThreadPoolGetPriorityWorkers.
func (p *Pool[T]) GetPriorityWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nPrioWorkers
}

// GetCurrentWorkers returns the number of currently live ordinary workers.
func (p *Pool[T]) GetCurrentWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nWorkers
}

