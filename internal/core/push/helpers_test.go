package push

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/pushgrid/internal/core/grid"
)

var ground = &grid.Floor{Name: "stone", Placeable: true}

func kind(name string, size int) *grid.Kind {
	return &grid.Kind{Name: name, Size: size}
}

func newWorld(w, h int) *grid.Grid {
	return grid.New(w, h, ground)
}

func spawn(t *testing.T, g *grid.Grid, name string, k *grid.Kind, x, y int) *grid.Occupant {
	t.Helper()
	o, err := g.Spawn(name, k, "blue", grid.P(x, y), grid.Right)
	require.NoError(t, err)
	return o
}

func newPusher(g Grid, opts ...Option) *Pusher {
	return New(g, NewTable(nil), opts...)
}

// refusingGrid rejects placements chosen by refuse while every read-only
// check still passes, simulating a world that changed after validation.
type refusingGrid struct {
	*grid.Grid
	refuse func(k *grid.Kind, anchor grid.Point) bool
}

func (r *refusingGrid) ValidPlace(k *grid.Kind, team grid.Team, anchor grid.Point) bool {
	if r.refuse(k, anchor) {
		return false
	}
	return r.Grid.ValidPlace(k, team, anchor)
}
