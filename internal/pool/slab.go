// Package pool provides fixed-capacity slab allocators for node and queue-item
// storage. All capacity is reserved up front so that acquiring and releasing
// storage on the scheduling path never touches the system allocator.
package pool

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned when a slab has no free slots left.
var ErrExhausted = errors.New("pool: slab exhausted")

// Slab hands out pointers into a single pre-reserved backing array. Acquire
// and Release are O(1). A Slab is not safe for concurrent use; callers
// serialize access the same way they serialize tree mutation.
type Slab[T any] struct {
	backing []T
	free    []*T
}

// NewSlab reserves storage for capacity values of T.
func NewSlab[T any](capacity int) *Slab[T] {
	s := &Slab[T]{
		backing: make([]T, capacity),
		free:    make([]*T, 0, capacity),
	}
	for i := capacity - 1; i >= 0; i-- {
		s.free = append(s.free, &s.backing[i])
	}
	return s
}

// Acquire returns a zeroed slot, or ErrExhausted when the slab is full.
func (s *Slab[T]) Acquire() (*T, error) {
	if len(s.free) == 0 {
		return nil, fmt.Errorf("acquiring slot (capacity %d): %w", len(s.backing), ErrExhausted)
	}
	p := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	var zero T
	*p = zero
	return p, nil
}

// Release returns a slot to the slab. The caller must not retain the pointer
// afterwards.
func (s *Slab[T]) Release(p *T) {
	s.free = append(s.free, p)
}

// Capacity reports the total number of slots.
func (s *Slab[T]) Capacity() int {
	return len(s.backing)
}

// InUse reports the number of currently acquired slots.
func (s *Slab[T]) InUse() int {
	return len(s.backing) - len(s.free)
}
