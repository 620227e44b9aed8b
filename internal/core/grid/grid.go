package grid

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Grid is a dense in-memory world. It is not safe for concurrent mutation;
// callers drive it from a single simulation goroutine.
type Grid struct {
	width     int
	height    int
	cells     []Cell // index = y*width + x
	occupants map[uuid.UUID]*Occupant
}

// New creates a width*height grid with every cell on floor.
func New(width, height int, floor *Floor) *Grid {
	g := &Grid{
		width:     width,
		height:    height,
		cells:     make([]Cell, width*height),
		occupants: make(map[uuid.UUID]*Occupant),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := &g.cells[y*width+x]
			c.Pos = Point{X: x, Y: y}
			c.Floor = floor
		}
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Cell returns the cell at p or nil when p is outside the grid.
func (g *Grid) Cell(p Point) *Cell {
	if !g.InBounds(p) {
		return nil
	}
	return &g.cells[p.Y*g.width+p.X]
}

// SetFloor changes the floor of an empty cell. Occupied cells are refused so
// terrain never changes under a placed occupant.
func (g *Grid) SetFloor(p Point, f *Floor) error {
	c := g.Cell(p)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	if c.Occupant != nil {
		return fmt.Errorf("%w: %s holds %s", ErrOccupied, p, c.Occupant)
	}
	c.Floor = f
	return nil
}

func (g *Grid) SetSolid(p Point, solid bool) error {
	c := g.Cell(p)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	if solid && c.Occupant != nil {
		return fmt.Errorf("%w: %s holds %s", ErrOccupied, p, c.Occupant)
	}
	c.Solid = solid
	return nil
}

// CanPlaceOn applies the kind's own anchor rule. Team ownership is not
// restricted by this grid.
func (g *Grid) CanPlaceOn(k *Kind, c *Cell, _ Team) bool {
	if k == nil || c == nil {
		return false
	}
	if len(k.Floors) == 0 {
		return true
	}
	if c.Floor == nil {
		return false
	}
	for _, name := range k.Floors {
		if name == c.Floor.Name {
			return true
		}
	}
	return false
}

// ValidPlace reports whether a fresh occupant of kind k could be placed at anchor.
func (g *Grid) ValidPlace(k *Kind, team Team, anchor Point) bool {
	if k.Validate() != nil {
		return false
	}
	for _, p := range footprint(k.Size, anchor) {
		c := g.Cell(p)
		if c == nil || c.Occupant != nil || !c.Supports(k) {
			return false
		}
	}
	return g.CanPlaceOn(k, g.Cell(anchor), team)
}

// Spawn creates and places a new occupant.
func (g *Grid) Spawn(name string, k *Kind, team Team, anchor Point, rot Direction) (*Occupant, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	o := &Occupant{
		ID:       uuid.New(),
		Name:     name,
		Kind:     k,
		Team:     team,
		Rotation: rot.Norm(),
	}
	if err := g.Place(o, anchor); err != nil {
		return nil, err
	}
	return o, nil
}

// Place puts o on the grid with its anchor at anchor. The occupant must not
// already be placed.
func (g *Grid) Place(o *Occupant, anchor Point) error {
	if _, placed := g.occupants[o.ID]; placed {
		return fmt.Errorf("%w: %s already placed", ErrOccupied, o)
	}
	if !g.ValidPlace(o.Kind, o.Team, anchor) {
		return fmt.Errorf("%w: %s at %s", ErrInvalidPlacement, o.Label(), anchor)
	}
	o.Anchor = anchor
	for _, p := range o.Footprint() {
		g.Cell(p).Occupant = o
	}
	g.occupants[o.ID] = o
	return nil
}

// Restore writes o back at anchor without consulting terrain. Only bounds and
// occupancy are checked, so an occupant can always return to the cells it was
// just removed from.
func (g *Grid) Restore(o *Occupant, anchor Point) error {
	if _, placed := g.occupants[o.ID]; placed {
		return fmt.Errorf("%w: %s already placed", ErrOccupied, o)
	}
	cells := footprint(o.Size(), anchor)
	for _, p := range cells {
		c := g.Cell(p)
		if c == nil {
			return fmt.Errorf("%w: %s", ErrOutOfBounds, p)
		}
		if c.Occupant != nil {
			return fmt.Errorf("%w: %s holds %s", ErrOccupied, p, c.Occupant)
		}
	}
	o.Anchor = anchor
	for _, p := range cells {
		g.Cell(p).Occupant = o
	}
	g.occupants[o.ID] = o
	return nil
}

// Remove takes o off the grid. The occupant keeps its last anchor.
func (g *Grid) Remove(o *Occupant) error {
	if _, placed := g.occupants[o.ID]; !placed {
		return fmt.Errorf("%w: %s", ErrUnknownOccupant, o)
	}
	for _, p := range o.Footprint() {
		if c := g.Cell(p); c != nil && c.Occupant == o {
			c.Occupant = nil
		}
	}
	delete(g.occupants, o.ID)
	return nil
}

// Kill marks o dead in place.
func (g *Grid) Kill(o *Occupant) {
	o.Dead = true
}

func (g *Grid) Occupant(id uuid.UUID) (*Occupant, bool) {
	o, ok := g.occupants[id]
	return o, ok
}

// Occupants returns placed occupants ordered by anchor, bottom row first.
func (g *Grid) Occupants() []*Occupant {
	out := make([]*Occupant, 0, len(g.occupants))
	for _, o := range g.occupants {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Anchor, out[j].Anchor
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Fingerprint hashes the placement of every occupant. Two grids with the same
// occupants at the same anchors produce the same value.
func (g *Grid) Fingerprint() uint64 {
	ids := make([]uuid.UUID, 0, len(g.occupants))
	for id := range g.occupants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	d := xxhash.New()
	buf := make([]byte, 0, 48)
	for _, id := range ids {
		o := g.occupants[id]
		buf = append(buf[:0], id[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(o.Anchor.X)))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(o.Anchor.Y)))
		buf = append(buf, byte(o.Rotation))
		if o.Dead {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// Verify checks that every occupant covers exactly its footprint.
func (g *Grid) Verify() error {
	covered := 0
	for _, o := range g.occupants {
		for _, p := range o.Footprint() {
			c := g.Cell(p)
			if c == nil || c.Occupant != o {
				return fmt.Errorf("%w: %s at %s", ErrCorruptFootprint, o, p)
			}
			covered++
		}
	}
	for i := range g.cells {
		if g.cells[i].Occupant != nil {
			covered--
		}
	}
	if covered != 0 {
		return fmt.Errorf("%w: %d stray cells", ErrCorruptFootprint, -covered)
	}
	return nil
}
