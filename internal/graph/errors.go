package graph

import "errors"

// Structural errors reported to the control layer. All of them indicate a
// protocol or programming error in the issued command, never an expected
// runtime condition; they are returned synchronously and do not reach the
// worker path.
var (
	// ErrInvariantViolation covers attempted cycles, double-attach and
	// duplicate node IDs.
	ErrInvariantViolation = errors.New("graph: invariant violation")

	// ErrNotAttached is returned by sibling queries on a detached node.
	ErrNotAttached = errors.New("graph: node not attached")

	// ErrNotAChild is returned when removing a node that is not a direct
	// child of the addressed group, typically caused by a stale handle.
	ErrNotAChild = errors.New("graph: node is not a child of this group")

	// ErrInvalidPosition is returned when the sibling referenced by an
	// insertion constraint is not actually a child of the target group.
	ErrInvalidPosition = errors.New("graph: invalid insertion position")

	// ErrMalformedGraph is returned by the compiler's defensive checks.
	// The attach invariants make it structurally unreachable; it exists
	// because the tree is mutated by a less-trusted external layer.
	ErrMalformedGraph = errors.New("graph: malformed node graph")
)
