// Package session provides the two execution contexts commands run on: a
// single-goroutine loop that owns all session/world state, and a bounded
// worker pool that does network I/O and nothing else. Workers hand results
// back by submitting a task onto the loop.
package session

import (
	"log"
	"sync"
)

// Loop runs submitted tasks one at a time on a dedicated goroutine. Anything
// that mutates the registry or the world must run here.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

func NewLoop(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	l := &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for task := range l.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Recovered from panic in session task: %v", r)
				}
			}()
			task()
		}()
	}
}

// Submit enqueues a task for the loop goroutine. Blocks only if the queue is
// full. Submitting after Close panics, same as sending on a closed channel.
func (l *Loop) Submit(task func()) {
	l.tasks <- task
}

// Close stops accepting tasks and waits for queued ones to finish.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.tasks)
	})
	<-l.done
}
