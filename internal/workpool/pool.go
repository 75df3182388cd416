package workpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Pool runs jobs on a fixed number of goroutines fed from a bounded queue.
// Each Pool is independent: the task level and the segment level of a batch
// create their own, so neither shares workers or lifecycle with the other.
type Pool struct {
	name string
	size int

	active    atomic.Int64
	completed atomic.Int64
	busyNanos atomic.Int64
}

// New returns a pool that runs at most size jobs at once. Sizes below one are
// raised to one.
func New(name string, size int) *Pool {
	return &Pool{name: name, size: max(size, 1)}
}

// Name returns the label used in logs.
func (p *Pool) Name() string { return p.name }

// Size returns the worker count.
func (p *Pool) Size() int { return p.size }

// Active returns the number of jobs currently running.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Completed returns the number of jobs that finished.
func (p *Pool) Completed() int { return int(p.completed.Load()) }

// MeanJobDuration returns the average wall time of finished jobs.
func (p *Pool) MeanJobDuration() time.Duration {
	done := p.completed.Load()
	if done == 0 {
		return 0
	}
	return time.Duration(p.busyNanos.Load() / done)
}

// Run pushes job indexes 0..n-1 onto a queue of capacity n and starts
// min(size, n) workers. Each worker pops an index, consults stop, and runs fn
// only while stop reports false; once a worker observes stop it exits without
// starting further jobs. A cancelled ctx behaves like stop. Run blocks until
// every worker has exited and reports which indexes were dispatched.
func (p *Pool) Run(ctx context.Context, n int, stop func() bool, fn func(ctx context.Context, index int)) []bool {
	dispatched := make([]bool, n)
	if n <= 0 {
		return dispatched
	}
	if ctx == nil {
		ctx = context.Background()
	}

	queue := make(chan int, n)
	for i := 0; i < n; i++ {
		queue <- i
	}
	close(queue)

	halted := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return stop != nil && stop()
	}

	workers := min(p.size, n)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for index := range queue {
				if halted() {
					return
				}
				dispatched[index] = true
				p.runJob(ctx, index, fn)
			}
		}()
	}
	wg.Wait()
	return dispatched
}

func (p *Pool) runJob(ctx context.Context, index int, fn func(context.Context, int)) {
	p.active.Add(1)
	started := time.Now()
	defer func() {
		p.busyNanos.Add(int64(time.Since(started)))
		p.completed.Add(1)
		p.active.Add(-1)
	}()
	fn(ctx, index)
}
