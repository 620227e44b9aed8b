package push

import (
	"github.com/zeusync/pushgrid/internal/core/grid"
	"github.com/zeusync/pushgrid/internal/core/observability/log"
)

// Table holds, per footprint size and direction, the offset from an
// occupant's anchor to the footprint corner on its forward edge. It is built
// once and never modified.
type Table struct {
	origins [grid.MaxSize][4]grid.Point
}

// NewTable computes the origin of every (size, direction) pair. Each origin is
// written to logger at debug level.
func NewTable(logger log.Log) *Table {
	if logger == nil {
		logger = log.NewNop()
	}
	t := &Table{}
	for size := 1; size <= grid.MaxSize; size++ {
		base := grid.P(size/2, size/2-(size-1))
		for side := 0; side < 4; side++ {
			og := base
			if side != 0 && size > 1 {
				for i := 1; i <= side; i++ {
					og = og.Add(grid.Direction(i).Vector().Scale(size - 1))
				}
			}
			t.origins[size-1][side] = og
			logger.Debug("origin",
				log.Int("size", size),
				log.Int("side", side),
				log.Int("x", og.X),
				log.Int("y", og.Y),
			)
		}
	}
	return t
}

// Origin returns the forward corner offset. It panics when size is outside
// [1, grid.MaxSize].
func (t *Table) Origin(size int, d grid.Direction) grid.Point {
	return t.origins[size-1][d.Norm()]
}

// Project is the signed distance of the occupant's leading edge along d.
func (t *Table) Project(o *grid.Occupant, d grid.Direction) int {
	return t.Origin(o.Size(), d).Add(o.Anchor).Dot(d.Vector())
}

// ForwardEdge lists the cells directly beyond the occupant's footprint in d,
// walking from the origin corner along d rotated a quarter turn.
func (t *Table) ForwardEdge(o *grid.Occupant, d grid.Direction) []grid.Point {
	size := o.Size()
	tangent := d.Rotate(1).Vector()
	start := o.Anchor.Add(t.Origin(size, d)).Add(d.Vector())
	out := make([]grid.Point, size)
	for i := range out {
		out[i] = start.Add(tangent.Scale(i))
	}
	return out
}

func validSize(o *grid.Occupant) bool {
	return o.Kind != nil && o.Kind.Size >= 1 && o.Kind.Size <= grid.MaxSize
}
