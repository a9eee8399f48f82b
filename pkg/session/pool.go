package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// WorkerPool runs network-bound tasks with bounded concurrency and a per-task
// deadline. Workers never touch session state directly.
type WorkerPool struct {
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewWorkerPool(maxConcurrency int, timeout time.Duration) *WorkerPool {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WorkerPool{
		sem:     make(chan struct{}, maxConcurrency),
		timeout: timeout,
	}
}

// Go schedules fn on a worker goroutine with a deadline-bound context.
func (p *WorkerPool) Go(fn func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered from panic in worker task: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// Wait blocks until all scheduled tasks have finished.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
