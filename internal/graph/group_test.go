package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childIDs(g *Node) []ID {
	var ids []ID
	g.ForEachChild(func(n *Node) { ids = append(ids, n.ID()) })
	return ids
}

func TestAddChildPlacement(t *testing.T) {
	ng := newTestGraph(t)
	root := ng.Root()

	a := mustSynth(t, ng, 1)
	b := mustSynth(t, ng, 2)
	c := mustSynth(t, ng, 3)

	require.NoError(t, root.AddChild(b, AtTail()))
	require.NoError(t, root.AddChild(a, AtHead()))
	require.NoError(t, root.AddChild(c, AtTail()))
	assert.Equal(t, []ID{1, 2, 3}, childIDs(root))

	t.Run("before", func(t *testing.T) {
		d := mustSynth(t, ng, 4)
		require.NoError(t, root.AddChild(d, Before(b)))
		assert.Equal(t, []ID{1, 4, 2, 3}, childIDs(root))
	})

	t.Run("after", func(t *testing.T) {
		e := mustSynth(t, ng, 5)
		require.NoError(t, root.AddChild(e, After(c)))
		assert.Equal(t, []ID{1, 4, 2, 3, 5}, childIDs(root))
	})

	t.Run("index", func(t *testing.T) {
		f := mustSynth(t, ng, 6)
		require.NoError(t, root.AddChild(f, AtIndex(2)))
		assert.Equal(t, []ID{1, 4, 6, 2, 3, 5}, childIDs(root))

		g := mustSynth(t, ng, 7)
		require.NoError(t, root.AddChild(g, AtIndex(100)))
		last, err := g.PrevSibling()
		require.NoError(t, err)
		assert.Equal(t, ID(5), last.ID())
	})

	t.Run("sibling in another group is an invalid position", func(t *testing.T) {
		other := mustGroup(t, ng, 20, false)
		require.NoError(t, root.AddChild(other, AtTail()))
		x := mustSynth(t, ng, 21)
		err := other.AddChild(x, Before(a))
		assert.ErrorIs(t, err, ErrInvalidPosition)
		assert.Nil(t, x.Parent())
	})
}

func TestRemoveChild(t *testing.T) {
	ng := newTestGraph(t)
	root := ng.Root()
	g := mustGroup(t, ng, 1, false)
	s := mustSynth(t, ng, 2)
	require.NoError(t, root.AddChild(g, AtTail()))
	require.NoError(t, root.AddChild(s, AtTail()))

	t.Run("not a child", func(t *testing.T) {
		err := g.RemoveChild(s)
		assert.ErrorIs(t, err, ErrNotAChild)
		assert.Same(t, root, s.Parent())
	})

	require.NoError(t, root.RemoveChild(s))
	assert.Nil(t, s.Parent())
	assert.False(t, root.HasChild(s))
	assert.True(t, root.HasChild(g))
}

func TestDeepQueries(t *testing.T) {
	ng := newTestGraph(t)
	root := ng.Root()

	// root -> [s1, g1 -> [s2, g2 -> [s3]], g3(empty)]
	s1 := mustSynth(t, ng, 1)
	g1 := mustGroup(t, ng, 2, false)
	s2 := mustSynth(t, ng, 3)
	g2 := mustGroup(t, ng, 4, true)
	s3 := mustSynth(t, ng, 5)
	g3 := mustGroup(t, ng, 6, false)

	require.NoError(t, root.AddChild(s1, AtTail()))
	require.NoError(t, root.AddChild(g1, AtTail()))
	require.NoError(t, g1.AddChild(s2, AtTail()))
	require.NoError(t, g1.AddChild(g2, AtTail()))
	require.NoError(t, g2.AddChild(s3, AtTail()))
	require.NoError(t, root.AddChild(g3, AtTail()))

	synths, groups := root.ChildCountDeep()
	assert.Equal(t, 3, synths)
	assert.Equal(t, 3, groups)

	assert.True(t, root.HasSynthDescendants())
	assert.True(t, g1.HasSynthDescendants())
	assert.True(t, g2.HasSynthDescendants())
	assert.False(t, g3.HasSynthDescendants())

	t.Run("group of empty groups has no synth descendants", func(t *testing.T) {
		g4 := mustGroup(t, ng, 7, false)
		require.NoError(t, g3.AddChild(g4, AtTail()))
		assert.False(t, g3.HasSynthDescendants())
	})
}

func TestRemoveSynthsDeep(t *testing.T) {
	ng := newTestGraph(t)
	root := ng.Root()

	g1 := mustGroup(t, ng, 1, false)
	g2 := mustGroup(t, ng, 2, true)
	require.NoError(t, root.AddChild(g1, AtTail()))
	require.NoError(t, g1.AddChild(g2, AtTail()))
	require.NoError(t, root.AddChild(mustSynth(t, ng, 10), AtTail()))
	require.NoError(t, g1.AddChild(mustSynth(t, ng, 11), AtHead()))
	require.NoError(t, g1.AddChild(mustSynth(t, ng, 12), AtTail()))
	require.NoError(t, g2.AddChild(mustSynth(t, ng, 13), AtTail()))

	root.RemoveSynthsDeep()

	for _, g := range []*Node{root, g1, g2} {
		assert.Equal(t, 0, g.ChildSynths(), "group %d", g.ID())
	}
	assert.False(t, root.HasSynthDescendants())
	// group structure is preserved
	assert.Same(t, root, g1.Parent())
	assert.Same(t, g1, g2.Parent())
	synths, groups := root.ChildCountDeep()
	assert.Equal(t, 0, synths)
	assert.Equal(t, 2, groups)
}

func TestClearChildren(t *testing.T) {
	ng := newTestGraph(t)
	root := ng.Root()
	g := mustGroup(t, ng, 1, false)
	require.NoError(t, root.AddChild(g, AtTail()))
	require.NoError(t, g.AddChild(mustSynth(t, ng, 2), AtTail()))
	require.NoError(t, g.AddChild(mustGroup(t, ng, 3, true), AtTail()))

	g.ClearChildren()
	assert.True(t, g.Empty())
	assert.Equal(t, 0, g.ChildSynths())
	assert.Equal(t, 0, g.ChildGroups())
	// handles stay valid, nodes are merely detached
	assert.NotNil(t, ng.Find(2))
	assert.Nil(t, ng.Find(2).Parent())
}

func TestPauseResume(t *testing.T) {
	ng := newTestGraph(t)
	root := ng.Root()
	g := mustGroup(t, ng, 1, false)
	s1 := mustSynth(t, ng, 2)
	s2 := mustSynth(t, ng, 3)
	require.NoError(t, root.AddChild(g, AtTail()))
	require.NoError(t, g.AddChild(s1, AtTail()))
	require.NoError(t, g.AddChild(s2, AtTail()))

	g.Pause()
	assert.True(t, s1.Paused())
	assert.True(t, s2.Paused())

	g.Resume()
	assert.False(t, s1.Paused())
	assert.False(t, s2.Paused())

	t.Run("synth pause is local", func(t *testing.T) {
		s1.Pause()
		assert.True(t, s1.Paused())
		assert.False(t, s2.Paused())
	})
}
