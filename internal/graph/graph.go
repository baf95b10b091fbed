package graph

import (
	"fmt"
	"sync"

	"github.com/vk/synthgrid/internal/pool"
	"github.com/vk/synthgrid/internal/queue"
)

// NodeGraph owns the node tree of one server instance. It serializes tree
// mutation against queue compilation with a single mutex, per the control /
// real-time split: all mutations arrive on the control context, and a
// compiled queue is read-only with respect to the tree while workers drain
// it. Node and queue-item storage is reserved once at construction.
type NodeGraph struct {
	mu   sync.Mutex
	slab *pool.Slab[Node]
	byID map[ID]*Node
	root *Node

	// double-buffered queues: compilation fills the spare so a failed
	// compile never corrupts the queue a driver may still be holding
	active *queue.Queue
	spare  *queue.Queue
	dirty  bool
}

// NewNodeGraph reserves storage for up to capacity nodes (the root group
// included) and creates the root: a sequential group with ID 0.
func NewNodeGraph(capacity int) (*NodeGraph, error) {
	ng := &NodeGraph{
		slab:   pool.NewSlab[Node](capacity),
		byID:   make(map[ID]*Node, capacity),
		active: queue.New(capacity),
		spare:  queue.New(capacity),
		dirty:  true,
	}
	root, err := ng.newNode(RootID, KindGroup, false, nil)
	if err != nil {
		return nil, fmt.Errorf("creating root group: %w", err)
	}
	ng.root = root
	return ng, nil
}

// Root returns the root group. It is always present and never freed.
func (ng *NodeGraph) Root() *Node {
	return ng.root
}

// NewSynth creates a detached synth node wrapping the given runner. The
// returned handle holds one reference owned by the control layer; the node
// is reclaimed once it is detached and freed.
func (ng *NodeGraph) NewSynth(id ID, r queue.Runner) (*Node, error) {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	if r == nil {
		return nil, fmt.Errorf("creating synth %d: nil runner: %w", id, ErrInvariantViolation)
	}
	return ng.newNode(id, KindSynth, false, r)
}

// NewGroup creates a detached group node, sequential or parallel.
func (ng *NodeGraph) NewGroup(id ID, parallel bool) (*Node, error) {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	return ng.newNode(id, KindGroup, parallel, nil)
}

// Find resolves a node handle by ID, or nil when no such node exists.
func (ng *NodeGraph) Find(id ID) *Node {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	return ng.byID[id]
}

// Add attaches node under parent at the given position.
func (ng *NodeGraph) Add(parent, node *Node, pl Placement) error {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	return parent.AddChild(node, pl)
}

// Remove detaches node from its parent. Removing an already detached node is
// a no-op.
func (ng *NodeGraph) Remove(node *Node) {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	node.Detach()
}

// Free detaches node and drops the control-layer handle created by NewSynth
// or NewGroup, returning the storage to the slab. The root group cannot be
// freed. For a group, children are detached first so their own lifetimes
// resolve independently.
func (ng *NodeGraph) Free(node *Node) error {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	if node == ng.root {
		return fmt.Errorf("freeing root group: %w", ErrInvariantViolation)
	}
	if node.IsGroup() {
		node.ClearChildren()
	}
	node.Detach()
	node.release()
	return nil
}

// Pause suspends node (and, for groups, every descendant) starting with the
// next compiled queue. A block already in flight is unaffected.
func (ng *NodeGraph) Pause(node *Node) {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	node.Pause()
}

// Resume lifts a suspension, visible to the next compiled queue.
func (ng *NodeGraph) Resume(node *Node) {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	node.Resume()
}

// Compile returns the execution queue for the current tree. The result is
// cached: an unchanged tree yields the same queue on every call. On failure
// the previously compiled queue stays valid and keeps being returned by
// subsequent calls until the tree changes.
func (ng *NodeGraph) Compile() (*queue.Queue, error) {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	if !ng.dirty {
		return ng.active, nil
	}
	if err := ng.fillQueue(ng.spare); err != nil {
		return nil, err
	}
	ng.active, ng.spare = ng.spare, ng.active
	ng.dirty = false
	return ng.active, nil
}

// NodeCount reports the number of live nodes, root included.
func (ng *NodeGraph) NodeCount() int {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	return ng.slab.InUse()
}

func (ng *NodeGraph) newNode(id ID, kind Kind, parallel bool, r queue.Runner) (*Node, error) {
	if _, exists := ng.byID[id]; exists {
		return nil, fmt.Errorf("creating node %d: duplicate id: %w", id, ErrInvariantViolation)
	}
	n, err := ng.slab.Acquire()
	if err != nil {
		return nil, fmt.Errorf("creating node %d: %w", id, err)
	}
	n.id = id
	n.kind = kind
	n.parallel = parallel
	n.runner = r
	n.refs = 1
	n.owner = ng
	ng.byID[id] = n
	return n, nil
}

// reclaim returns a node whose reference count reached zero to the slab.
func (ng *NodeGraph) reclaim(n *Node) {
	delete(ng.byID, n.id)
	ng.slab.Release(n)
}
