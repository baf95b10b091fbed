// Package queue holds the compiled execution artifact of the node graph: a
// flat set of items with activation counters and successor links, plus the
// worker pool that drains one queue per audio block.
package queue

import (
	"sync/atomic"

	"github.com/vk/synthgrid/internal/pool"
)

// Runner is the opaque leaf computation of a synth. Implementations perform
// one block of signal processing and must not retain references to the item
// that invoked them.
type Runner interface {
	Run()
}

// Item is a single executable unit in a compiled queue. It references exactly
// one synth runner. The activation limit is the number of predecessor items
// that must complete before the item becomes runnable.
type Item struct {
	runner     Runner
	limit      int32
	pending    atomic.Int32
	successors []*Item
}

// Runner returns the synth computation the item executes.
func (it *Item) Runner() Runner {
	return it.runner
}

// Limit returns the compiled activation limit.
func (it *Item) Limit() int32 {
	return it.limit
}

// Successors returns the items notified when this item completes.
func (it *Item) Successors() []*Item {
	return it.successors
}

// AddSuccessor links s as a completion dependent of the item.
func (it *Item) AddSuccessor(s *Item) {
	it.successors = append(it.successors, s)
}

// Queue is one compilation epoch's worth of items. Item storage comes from a
// slab reserved at construction and is recycled by Clear between epochs, so
// compiling never calls the system allocator.
type Queue struct {
	slab  *pool.Slab[Item]
	items []*Item
	ready []*Item // scratch for arm, reused every block
}

// New reserves a queue able to hold up to capacity items.
func New(capacity int) *Queue {
	return &Queue{
		slab:  pool.NewSlab[Item](capacity),
		items: make([]*Item, 0, capacity),
		ready: make([]*Item, 0, capacity),
	}
}

// Add appends a new item with the given runner and activation limit and
// returns it so the compiler can wire successor links.
func (q *Queue) Add(r Runner, limit int32) (*Item, error) {
	it, err := q.slab.Acquire()
	if err != nil {
		return nil, err
	}
	it.runner = r
	it.limit = limit
	q.items = append(q.items, it)
	return it, nil
}

// Clear releases every item back to the slab, leaving an empty queue ready
// for the next compilation epoch.
func (q *Queue) Clear() {
	for _, it := range q.items {
		it.runner = nil
		q.slab.Release(it)
	}
	q.items = q.items[:0]
}

// Len reports the number of compiled items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Items returns the compiled items in emission order.
func (q *Queue) Items() []*Item {
	return q.items
}

// arm loads every item's pending counter from its compiled limit and returns
// the initially runnable items (activation limit zero).
func (q *Queue) arm() []*Item {
	q.ready = q.ready[:0]
	for _, it := range q.items {
		it.pending.Store(it.limit)
		if it.limit == 0 {
			q.ready = append(q.ready, it)
		}
	}
	return q.ready
}
