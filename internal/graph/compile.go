package graph

import (
	"fmt"

	"github.com/vk/synthgrid/internal/queue"
)

// fillQueue compiles the tree into q. Compilation is all-or-nothing: q is
// only swapped in by the caller when no error occurred.
func (ng *NodeGraph) fillQueue(q *queue.Queue) error {
	q.Clear()
	if tailCount(ng.root) == 0 {
		// nothing runnable; an empty queue is a valid epoch
		return nil
	}
	visited := make(map[*Node]struct{}, ng.slab.InUse())
	_, err := fillRecursive(q, ng.root, nil, 0, visited)
	return err
}

// fillRecursive emits queue items for the subtree rooted at n. successors is
// the item set that every tail of the subtree must signal on completion;
// limit is the activation limit of the subtree's head items, i.e. how many
// external predecessors they wait for. It returns the dangling successor set
// the caller hands to whatever precedes n, so each subtree compiles without
// any knowledge of its surrounding context.
func fillRecursive(q *queue.Queue, n *Node, successors []*queue.Item, limit int32, visited map[*Node]struct{}) ([]*queue.Item, error) {
	if _, seen := visited[n]; seen {
		return nil, fmt.Errorf("compiling node %d: visited twice: %w", n.id, ErrMalformedGraph)
	}
	visited[n] = struct{}{}

	switch n.kind {
	case KindSynth:
		if n.paused {
			// structurally present but transparent: predecessors pass
			// straight through to the successors
			return successors, nil
		}
		it, err := q.Add(n.runner, limit)
		if err != nil {
			return nil, fmt.Errorf("compiling node %d: %w", n.id, err)
		}
		for _, s := range successors {
			it.AddSuccessor(s)
		}
		return []*queue.Item{it}, nil

	case KindGroup:
		if n.parallel {
			return fillParallel(q, n, successors, limit, visited)
		}
		return fillSequential(q, n, successors, limit, visited)

	default:
		return nil, fmt.Errorf("compiling node %d: unknown kind %d: %w", n.id, n.kind, ErrMalformedGraph)
	}
}

// fillSequential wires the children of g into a strict chain in collection
// order. Children are compiled back to front so that each child receives the
// following child's dangling items as its successor set. Inert children
// (nothing runnable underneath) are transparent. The head items of the first
// runnable child take the group's incoming activation limit; every later
// child waits on the tail count of its nearest runnable predecessor.
func fillSequential(q *queue.Queue, g *Node, successors []*queue.Item, limit int32, visited map[*Node]struct{}) ([]*queue.Item, error) {
	var kids []*Node
	for c := g.head; c != nil; c = c.next {
		if tailCount(c) > 0 {
			kids = append(kids, c)
		}
	}

	for i := len(kids) - 1; i >= 0; i-- {
		lim := limit
		if i > 0 {
			lim = tailCount(kids[i-1])
		}
		var err error
		successors, err = fillRecursive(q, kids[i], successors, lim, visited)
		if err != nil {
			return nil, err
		}
	}
	// an empty or fully inert group passes successors through unchanged
	return successors, nil
}

// fillParallel wires every runnable child of g as an independent branch: all
// branches share the group's incoming activation limit and successor set,
// and the group's dangling set is the union over all branches, so downstream
// dependents wait for every branch to finish.
func fillParallel(q *queue.Queue, g *Node, successors []*queue.Item, limit int32, visited map[*Node]struct{}) ([]*queue.Item, error) {
	var out []*queue.Item
	for c := g.head; c != nil; c = c.next {
		if tailCount(c) == 0 {
			continue
		}
		heads, err := fillRecursive(q, c, successors, limit, visited)
		if err != nil {
			return nil, err
		}
		out = append(out, heads...)
	}
	return out, nil
}

// tailCount computes the number of items a subtree exposes as its tail set,
// which sizes the activation limit of whatever follows it. A runnable synth
// counts 1, a paused one 0. A sequential group takes the count of its last
// child with runnable work, scanning from the end past inert children. A
// parallel group sums over all children, since every branch signals
// completion independently. An entirely inert subtree yields 0.
func tailCount(n *Node) int32 {
	if n.IsSynth() {
		if n.paused {
			return 0
		}
		return 1
	}
	if n.parallel {
		var sum int32
		for c := n.head; c != nil; c = c.next {
			sum += tailCount(c)
		}
		return sum
	}
	for c := n.tail; c != nil; c = c.prev {
		if tc := tailCount(c); tc > 0 {
			return tc
		}
	}
	return 0
}
