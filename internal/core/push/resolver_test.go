package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pushgrid/internal/core/grid"
)

func TestResolveBranchingChainOrder(t *testing.T) {
	g := newWorld(16, 8)
	root := spawn(t, g, "root", kind("big", 3), 2, 2)
	spawn(t, g, "x", kind("small", 1), 4, 1)
	spawn(t, g, "y", kind("small", 1), 4, 3)
	spawn(t, g, "z", kind("small", 1), 5, 3)
	spawn(t, g, "w", kind("mid", 2), 5, 1)
	spawn(t, g, "loose", kind("small", 1), 4, 5)
	p := newPusher(g)

	chain, err := p.Resolve(root, grid.Right, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "x", "y", "z", "w"}, chain.Labels())

	for i := 1; i < len(chain); i++ {
		assert.LessOrEqual(t, p.Table().Project(chain[i-1], grid.Right), p.Table().Project(chain[i], grid.Right))
	}
}

func TestResolveChainIsReachable(t *testing.T) {
	g := newWorld(16, 8)
	root := spawn(t, g, "root", kind("big", 3), 2, 2)
	spawn(t, g, "x", kind("small", 1), 4, 1)
	spawn(t, g, "w", kind("mid", 2), 5, 1)
	p := newPusher(g)

	chain, err := p.Resolve(root, grid.Right, 10, nil)
	require.NoError(t, err)

	reached := map[*grid.Occupant]bool{root: true}
	for _, o := range chain[1:] {
		found := false
		for prev := range reached {
			for _, pt := range p.Table().ForwardEdge(prev, grid.Right) {
				if g.Cell(pt).Occupant == o {
					found = true
				}
			}
		}
		assert.True(t, found, "%s not coupled to an earlier occupant", o)
		assert.True(t, Displaceable(o))
		reached[o] = true
	}
}

func TestResolveNoDuplicates(t *testing.T) {
	g := newWorld(16, 8)
	root := spawn(t, g, "root", kind("big", 3), 2, 2)
	wide := spawn(t, g, "wide", kind("big", 3), 5, 2)
	p := newPusher(g)

	chain, err := p.Resolve(root, grid.Right, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, Chain{root, wide}, chain)
}

func TestResolveBudget(t *testing.T) {
	g := newWorld(16, 4)
	a := spawn(t, g, "a", kind("b", 1), 1, 1)
	spawn(t, g, "b", kind("b", 1), 2, 1)
	spawn(t, g, "c", kind("b", 1), 3, 1)
	p := newPusher(g)

	chain, err := p.Resolve(a, grid.Right, 3, nil)
	require.NoError(t, err)
	assert.Len(t, chain, 3)

	_, err = p.Resolve(a, grid.Right, 2, nil)
	assert.ErrorIs(t, err, ErrChainTooLong)
	assert.ErrorIs(t, err, ErrBlocked)

	_, err = p.Resolve(a, grid.Right, 0, nil)
	assert.ErrorIs(t, err, ErrChainTooLong)
}

func TestResolveCoupledBlock(t *testing.T) {
	g := newWorld(16, 8)
	root := spawn(t, g, "root", kind("big", 3), 2, 2)
	spawn(t, g, "x", kind("small", 1), 4, 1)
	core := spawn(t, g, "core", &grid.Kind{Name: "core", Size: 2, Core: true}, 5, 1)
	p := newPusher(g)

	_, err := p.Resolve(root, grid.Right, 10, nil)
	assert.ErrorIs(t, err, ErrCoupledBlock)

	require.NoError(t, g.Remove(core))
	chain, err := p.Resolve(root, grid.Right, 10, nil)
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestResolveDeadOccupantBlocks(t *testing.T) {
	g := newWorld(8, 4)
	a := spawn(t, g, "a", kind("b", 1), 1, 1)
	b := spawn(t, g, "b", kind("b", 1), 2, 1)
	g.Kill(b)
	p := newPusher(g)

	_, err := p.Resolve(a, grid.Right, 5, nil)
	assert.ErrorIs(t, err, ErrCoupledBlock)
}

func TestResolveFilterPoisonsChain(t *testing.T) {
	g := newWorld(16, 4)
	a := spawn(t, g, "a", kind("b", 1), 1, 1)
	spawn(t, g, "b", kind("b", 1), 2, 1)
	spawn(t, g, "c", &grid.Kind{Name: "glass", Size: 1}, 3, 1)
	p := newPusher(g)

	noGlass := func(o *grid.Occupant) bool { return o.Kind.Name != "glass" }
	_, err := p.Resolve(a, grid.Right, 10, noGlass)
	assert.ErrorIs(t, err, ErrCoupledBlock)

	chain, err := p.Resolve(a, grid.Left, 10, noGlass)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, chain.Labels())
}

func TestResolveRoot(t *testing.T) {
	g := newWorld(8, 8)
	core := spawn(t, g, "core", &grid.Kind{Name: "core", Size: 3, Core: true}, 3, 3)
	a := spawn(t, g, "a", kind("b", 1), 0, 0)
	p := newPusher(g)

	_, err := p.Resolve(core, grid.Right, 5, nil)
	assert.ErrorIs(t, err, ErrUnpushableRoot)

	_, err = p.Resolve(nil, grid.Right, 5, nil)
	assert.ErrorIs(t, err, ErrUnpushableRoot)

	_, err = p.Resolve(a, grid.Right, 5, func(*grid.Occupant) bool { return false })
	assert.ErrorIs(t, err, ErrUnpushableRoot)

	bad := &grid.Occupant{Kind: kind("huge", 17)}
	_, err = p.Resolve(bad, grid.Right, 5, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestResolveIgnoresCellsOutsideGrid(t *testing.T) {
	g := newWorld(4, 4)
	a := spawn(t, g, "a", kind("b", 1), 3, 3)
	p := newPusher(g)

	chain, err := p.Resolve(a, grid.Up, 5, nil)
	require.NoError(t, err)
	assert.Len(t, chain, 1)
}
