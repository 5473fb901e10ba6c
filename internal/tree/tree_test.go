package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybook/internal/tree"
)

// buildArena returns:
//
//	1
//	├── 2
//	│   └── 4
//	└── 3
//	5 (root)
func buildArena(t *testing.T) *tree.Arena[string] {
	t.Helper()
	a := tree.NewArena[string]()
	require.NoError(t, a.Add(1, "province", 0))
	require.NoError(t, a.Add(2, "city", 1))
	require.NoError(t, a.Add(3, "city2", 1))
	require.NoError(t, a.Add(4, "town", 2))
	require.NoError(t, a.Add(5, "other-province", 0))
	return a
}

func TestDescendants_DepthFirst(t *testing.T) {
	a := buildArena(t)

	got, err := a.Descendants(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 3}, got)

	got, err = a.Descendants(5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAncestors(t *testing.T) {
	a := buildArena(t)

	got, err := a.Ancestors(4)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, got)

	ok, err := a.IsAncestorOf(1, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.IsDescendantOf(4, 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReparent(t *testing.T) {
	a := buildArena(t)

	require.NoError(t, a.Reparent(4, 3))
	got, err := a.Descendants(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, got)

	chain, err := a.Ancestors(4)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, chain)
}

func TestReparent_CycleRejected(t *testing.T) {
	a := buildArena(t)

	assert.ErrorIs(t, a.Reparent(1, 4), tree.ErrCycle)
	assert.ErrorIs(t, a.Reparent(2, 2), tree.ErrCycle)

	// The arena is unchanged after a rejected move.
	chain, err := a.Ancestors(4)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, chain)
}

func TestNodeNeverItsOwnAncestor(t *testing.T) {
	a := buildArena(t)

	moves := [][2]int64{{4, 1}, {2, 3}, {3, 5}, {4, 2}, {5, 0}}
	for _, m := range moves {
		err := a.Reparent(m[0], m[1])
		require.NoError(t, err)
	}

	for _, id := range []int64{1, 2, 3, 4, 5} {
		chain, err := a.Ancestors(id)
		require.NoError(t, err)
		assert.NotContains(t, chain, id)

		desc, err := a.Descendants(id)
		require.NoError(t, err)
		assert.NotContains(t, desc, id)
	}
}

func TestRemove(t *testing.T) {
	a := buildArena(t)

	assert.ErrorIs(t, a.Remove(2), tree.ErrHasChildren)

	require.NoError(t, a.Remove(4))
	require.NoError(t, a.Remove(2))
	assert.Equal(t, 3, a.Len())

	_, err := a.Ancestors(4)
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestAdd_Errors(t *testing.T) {
	a := buildArena(t)

	assert.ErrorIs(t, a.Add(1, "dup", 0), tree.ErrExists)
	assert.ErrorIs(t, a.Add(9, "orphan", 42), tree.ErrNotFound)
}
