package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/synthgrid/internal/ctxlog"
)

// ErrNoRunnableItems is returned when a non-empty queue has no item with a
// zero activation limit. Draining such a queue would never terminate; the
// condition indicates a compiler defect, not a user error.
var ErrNoRunnableItems = errors.New("queue: no runnable items")

// Executor drains compiled queues across a pool of worker goroutines.
type Executor struct {
	workers int
}

// NewExecutor creates an executor with the given worker count.
func NewExecutor(workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{workers: workers}
}

// Drain executes every item in the queue exactly once, releasing an item to
// a worker only after all of its predecessors completed. It returns when the
// queue is exhausted. A block is a fixed unit of work: there is no
// cancellation mid-drain, the context is carried for logging only.
func (e *Executor) Drain(ctx context.Context, q *Queue) error {
	logger := ctxlog.FromContext(ctx)

	if q.Len() == 0 {
		return nil
	}

	roots := q.arm()
	if len(roots) == 0 {
		return ErrNoRunnableItems
	}

	readyChan := make(chan *Item, q.Len())
	for _, it := range roots {
		readyChan <- it
	}
	logger.Debug("Draining queue.", "items", q.Len(), "roots", len(roots), "workers", e.workers)

	var wg sync.WaitGroup
	wg.Add(q.Len())
	for i := 0; i < e.workers; i++ {
		go worker(readyChan, &wg)
	}

	wg.Wait()
	close(readyChan)
	logger.Debug("Queue drained.")
	return nil
}

// worker is the processing loop for a single worker goroutine. Completion
// signaling runs on atomic counters: when sibling branches of a parallel
// group finish at the same instant, exactly one decrement observes the
// transition to zero and publishes the successor.
func worker(readyChan chan *Item, wg *sync.WaitGroup) {
	for it := range readyChan {
		it.runner.Run()

		for _, succ := range it.successors {
			if succ.pending.Add(-1) == 0 {
				readyChan <- succ
			}
		}
		wg.Done()
	}
}
