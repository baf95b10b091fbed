// Package graph maintains the hierarchical node tree of a synthesis server
// and compiles it, once per control-rate epoch, into a flat dependency-ordered
// execution queue. Nodes are either synths (leaves running signal processing)
// or groups (ordered containers with sequential or parallel execution
// semantics). All storage comes from a slab reserved at startup.
package graph

import (
	"fmt"

	"github.com/vk/synthgrid/internal/queue"
)

// ID identifies a node. IDs are assigned by the control layer and stay
// stable for the node's lifetime. ID 0 is reserved for the root group.
type ID int32

// RootID is the ID of the implicit root group of every node graph.
const RootID ID = 0

// Kind distinguishes leaf synths from container groups. The variant is
// closed: no other node kinds exist.
type Kind uint8

const (
	// KindSynth is a leaf node performing signal processing.
	KindSynth Kind = iota
	// KindGroup is an ordered container of child nodes.
	KindGroup
)

// Node is a single unit in the processing tree, tagged by Kind. Group-only
// fields (child list, cached counts) are zero for synths; the runner is nil
// for groups. Nodes are owned by their NodeGraph's slab and kept alive by
// the sum of the control-layer handle and the parent's membership reference.
type Node struct {
	id       ID
	kind     Kind
	parallel bool
	paused   bool
	runner   queue.Runner

	refs  int32
	owner *NodeGraph

	// intrusive links into the parent's ordered child list
	parent *Node
	prev   *Node
	next   *Node

	// group state
	head        *Node
	tail        *Node
	childSynths int
	childGroups int
}

// ID returns the node's control-layer identifier.
func (n *Node) ID() ID {
	return n.id
}

// Kind returns the node's variant tag.
func (n *Node) Kind() Kind {
	return n.kind
}

// IsSynth reports whether the node is a leaf synth.
func (n *Node) IsSynth() bool {
	return n.kind == KindSynth
}

// IsGroup reports whether the node is a container group.
func (n *Node) IsGroup() bool {
	return n.kind == KindGroup
}

// IsParallel reports whether a group executes its children concurrently.
// Always false for synths.
func (n *Node) IsParallel() bool {
	return n.parallel
}

// Paused reports whether a synth is currently suspended. Paused synths keep
// their structural position but are excluded from compiled queues.
func (n *Node) Paused() bool {
	return n.paused
}

// Parent returns the containing group, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// NextSibling returns the following node in the parent's child order, or nil
// when the node is last. Fails with ErrNotAttached on a detached node.
func (n *Node) NextSibling() (*Node, error) {
	if n.parent == nil {
		return nil, fmt.Errorf("next sibling of node %d: %w", n.id, ErrNotAttached)
	}
	return n.next, nil
}

// PrevSibling returns the preceding node in the parent's child order, or nil
// when the node is first. Fails with ErrNotAttached on a detached node.
func (n *Node) PrevSibling() (*Node, error) {
	if n.parent == nil {
		return nil, fmt.Errorf("previous sibling of node %d: %w", n.id, ErrNotAttached)
	}
	return n.prev, nil
}

// Pause suspends the node. For a group the signal propagates to every
// descendant. The change is observed by the next compilation, never by a
// block already in flight.
func (n *Node) Pause() {
	n.setPaused(true)
}

// Resume lifts a suspension set by Pause, with the same propagation rules.
func (n *Node) Resume() {
	n.setPaused(false)
}

func (n *Node) setPaused(paused bool) {
	if n.IsSynth() {
		n.paused = paused
		n.markDirty()
		return
	}
	for c := n.head; c != nil; c = c.next {
		c.setPaused(paused)
	}
}

// Detach removes the node from its parent's child list, releasing the
// membership reference taken at attach time. Detaching an unattached node is
// a no-op, not an error: lifecycle races from the control layer must not
// crash the audio thread.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	p.unlink(n)
	if n.IsSynth() {
		p.childSynths--
	} else {
		p.childGroups--
	}
	n.parent = nil
	n.markDirty()
	n.release()
}

// attach wires the node under parent. Callers have already validated the
// placement; attach enforces the single-parent and acyclicity invariants.
func (n *Node) attach(parent *Node) error {
	if n.parent != nil {
		return fmt.Errorf("attaching node %d: already attached: %w", n.id, ErrInvariantViolation)
	}
	for a := parent; a != nil; a = a.parent {
		if a == n {
			return fmt.Errorf("attaching node %d: target group %d is a descendant: %w",
				n.id, parent.id, ErrInvariantViolation)
		}
	}
	n.retain()
	n.parent = parent
	if n.IsSynth() {
		parent.childSynths++
	} else {
		parent.childGroups++
	}
	n.markDirty()
	return nil
}

// markDirty invalidates the owning graph's compiled queue. Structural and
// pause changes always run on the control thread, serialized against
// compilation, so a plain flag suffices.
func (n *Node) markDirty() {
	if n.owner != nil {
		n.owner.dirty = true
	}
}

func (n *Node) retain() {
	n.refs++
}

// release drops one reference; at zero the node's storage goes back to the
// slab it came from.
func (n *Node) release() {
	n.refs--
	if n.refs == 0 && n.owner != nil {
		n.owner.reclaim(n)
	}
}
