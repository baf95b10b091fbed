package graph

import "fmt"

// PlaceMode selects where AddChild inserts a node within a group.
type PlaceMode uint8

const (
	// PlaceHead inserts as the first child.
	PlaceHead PlaceMode = iota
	// PlaceTail inserts as the last child.
	PlaceTail
	// PlaceBefore inserts immediately before Placement.Sibling.
	PlaceBefore
	// PlaceAfter inserts immediately after Placement.Sibling.
	PlaceAfter
	// PlaceIndex inserts at the numeric position Placement.Index,
	// clamped to the current child count.
	PlaceIndex
)

// Placement is a positional insertion constraint.
type Placement struct {
	Mode    PlaceMode
	Sibling *Node
	Index   int
}

// AtHead places a node as the first child of a group.
func AtHead() Placement { return Placement{Mode: PlaceHead} }

// AtTail places a node as the last child of a group.
func AtTail() Placement { return Placement{Mode: PlaceTail} }

// Before places a node immediately before an existing child.
func Before(sibling *Node) Placement { return Placement{Mode: PlaceBefore, Sibling: sibling} }

// After places a node immediately after an existing child.
func After(sibling *Node) Placement { return Placement{Mode: PlaceAfter, Sibling: sibling} }

// AtIndex places a node at a numeric position in the child order.
func AtIndex(i int) Placement { return Placement{Mode: PlaceIndex, Index: i} }

// AddChild inserts node into the group's ordered child list at the given
// position. It fails with ErrInvalidPosition if a referenced sibling is not
// a child of this group, and with ErrInvariantViolation if node is already
// attached or the attachment would create a cycle.
func (g *Node) AddChild(node *Node, pl Placement) error {
	if !g.IsGroup() {
		return fmt.Errorf("adding child to node %d: not a group: %w", g.id, ErrInvariantViolation)
	}

	switch pl.Mode {
	case PlaceBefore, PlaceAfter:
		if pl.Sibling == nil || pl.Sibling.parent != g {
			return fmt.Errorf("adding node %d to group %d: sibling reference: %w",
				node.id, g.id, ErrInvalidPosition)
		}
	case PlaceHead, PlaceTail, PlaceIndex:
	default:
		return fmt.Errorf("adding node %d to group %d: unknown placement mode %d: %w",
			node.id, g.id, pl.Mode, ErrInvalidPosition)
	}

	if err := node.attach(g); err != nil {
		return err
	}

	switch pl.Mode {
	case PlaceHead:
		g.linkFront(node)
	case PlaceTail:
		g.linkBack(node)
	case PlaceBefore:
		g.linkBefore(node, pl.Sibling)
	case PlaceAfter:
		g.linkAfter(node, pl.Sibling)
	case PlaceIndex:
		g.linkAt(node, pl.Index)
	}
	return nil
}

// RemoveChild detaches node from the group. It fails with ErrNotAChild when
// node is not currently a direct child.
func (g *Node) RemoveChild(node *Node) error {
	if node.parent != g {
		return fmt.Errorf("removing node %d from group %d: %w", node.id, g.id, ErrNotAChild)
	}
	node.Detach()
	return nil
}

// HasChild reports whether node is a direct child of the group.
func (g *Node) HasChild(node *Node) bool {
	return node != nil && node.parent == g
}

// Empty reports whether the group has no children at all.
func (g *Node) Empty() bool {
	return g.head == nil
}

// ChildCount returns the number of direct children from the cached counts.
func (g *Node) ChildCount() int {
	return g.childSynths + g.childGroups
}

// ChildSynths returns the cached number of direct synth children.
func (g *Node) ChildSynths() int {
	return g.childSynths
}

// ChildGroups returns the cached number of direct group children.
func (g *Node) ChildGroups() int {
	return g.childGroups
}

// ChildCountDeep returns the total synth and group descendant counts by
// recursive summation. Off the audio path only.
func (g *Node) ChildCountDeep() (synths, groups int) {
	synths = g.childSynths
	groups = g.childGroups
	for c := g.head; c != nil; c = c.next {
		if c.IsGroup() {
			s, gr := c.ChildCountDeep()
			synths += s
			groups += gr
		}
	}
	return synths, groups
}

// HasSynthDescendants reports whether the group or any descendant group
// directly contains a synth. Off the audio path only.
func (g *Node) HasSynthDescendants() bool {
	for c := g.head; c != nil; c = c.next {
		if c.IsSynth() {
			return true
		}
		if c.HasSynthDescendants() {
			return true
		}
	}
	return false
}

// ForEachChild calls f on every direct child in collection order. f must not
// mutate the child list.
func (g *Node) ForEachChild(f func(*Node)) {
	for c := g.head; c != nil; c = c.next {
		f(c)
	}
}

// ClearChildren detaches and releases every direct child. Afterwards both
// cached counts are zero.
func (g *Node) ClearChildren() {
	for g.head != nil {
		g.head.Detach()
	}
}

// RemoveSynthsDeep removes every descendant synth, direct and nested, while
// leaving the group structure intact. Afterwards every group in the subtree
// has a zero synth count.
func (g *Node) RemoveSynthsDeep() {
	c := g.head
	for c != nil {
		next := c.next
		if c.IsSynth() {
			c.Detach()
		} else {
			c.RemoveSynthsDeep()
		}
		c = next
	}
}

func (g *Node) linkFront(n *Node) {
	n.prev = nil
	n.next = g.head
	if g.head != nil {
		g.head.prev = n
	} else {
		g.tail = n
	}
	g.head = n
}

func (g *Node) linkBack(n *Node) {
	n.next = nil
	n.prev = g.tail
	if g.tail != nil {
		g.tail.next = n
	} else {
		g.head = n
	}
	g.tail = n
}

func (g *Node) linkBefore(n, sibling *Node) {
	if sibling.prev == nil {
		g.linkFront(n)
		return
	}
	n.prev = sibling.prev
	n.next = sibling
	sibling.prev.next = n
	sibling.prev = n
}

func (g *Node) linkAfter(n, sibling *Node) {
	if sibling.next == nil {
		g.linkBack(n)
		return
	}
	n.next = sibling.next
	n.prev = sibling
	sibling.next.prev = n
	sibling.next = n
}

func (g *Node) linkAt(n *Node, index int) {
	if index <= 0 || g.head == nil {
		g.linkFront(n)
		return
	}
	at := g.head
	for i := 0; i < index; i++ {
		if at.next == nil {
			g.linkBack(n)
			return
		}
		at = at.next
	}
	g.linkBefore(n, at)
}

func (g *Node) unlink(n *Node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		g.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		g.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}
