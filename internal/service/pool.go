package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of campaigns executing at once. Submissions beyond
// the limit wait in their own goroutine until a slot frees up, so Create
// never blocks the caller.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func NewPool(size int64) *Pool {
	return &Pool{sem: semaphore.NewWeighted(size)}
}

// Submit schedules fn on the pool. fn runs once a slot is acquired; when ctx
// is cancelled before that, fn never runs.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		fn(ctx)
	}()
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
