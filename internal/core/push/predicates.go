package push

import "github.com/zeusync/pushgrid/internal/core/grid"

// Displaceable reports whether o may be moved at all. Dead occupants, cores and
// kinds flagged immovable never move.
func Displaceable(o *grid.Occupant) bool {
	if o == nil || o.Dead || o.Kind == nil {
		return false
	}
	return !o.Kind.Core && !o.Kind.Immovable
}

// CellAvailable reports whether an occupant of kind k could end up on c.
// An occupied cell counts as available when its occupant is displaceable; the
// caller is then responsible for pushing that occupant out of the way.
func CellAvailable(c *grid.Cell, k *grid.Kind) bool {
	if c == nil {
		return false
	}
	if c.Occupant != nil {
		return Displaceable(c.Occupant)
	}
	return c.Supports(k)
}
