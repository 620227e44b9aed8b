package push

import "github.com/zeusync/pushgrid/internal/core/grid"

// CanPush reports whether o alone may advance one cell in d, treating any
// displaceable occupant ahead as if it will move away. The grid is not
// modified.
func (p *Pusher) CanPush(o *grid.Occupant, d grid.Direction) bool {
	if !Displaceable(o) || !validSize(o) {
		return false
	}
	d = d.Norm()
	for _, pt := range p.table.ForwardEdge(o, d) {
		if !CellAvailable(p.grid.Cell(pt), o.Kind) {
			return false
		}
	}
	next := p.grid.Cell(o.Anchor.Step(d))
	return next != nil && p.grid.CanPlaceOn(o.Kind, next, o.Team)
}
