package grid

import (
	"fmt"

	"github.com/google/uuid"
)

// MaxSize is the largest supported footprint side length.
const MaxSize = 16

// LiquidWater is the liquid a water-requiring kind needs underneath it.
const LiquidWater = "water"

// Team identifies the owner of an occupant.
type Team string

// Floor describes the ground of a cell.
type Floor struct {
	Name      string `yaml:"name"`
	Placeable bool   `yaml:"placeable"`
	Liquid    string `yaml:"liquid,omitempty"`
	Deep      bool   `yaml:"deep,omitempty"`
}

// Kind is the type-level description shared by all occupants of one block type.
type Kind struct {
	Name string `yaml:"name"`
	Size int    `yaml:"size"`

	// Core kinds are structural and never move.
	Core bool `yaml:"core,omitempty"`
	// Immovable marks any other kind that must never be displaced.
	Immovable bool `yaml:"immovable,omitempty"`

	Floating        bool `yaml:"floating,omitempty"`
	PlaceableLiquid bool `yaml:"placeable_liquid,omitempty"`
	RequiresWater   bool `yaml:"requires_water,omitempty"`

	// Floors restricts the anchor cell to the named floors when not empty.
	Floors []string `yaml:"floors,omitempty"`
}

func (k *Kind) Validate() error {
	if k == nil {
		return fmt.Errorf("%w: nil kind", ErrInvalidKind)
	}
	if k.Size < 1 || k.Size > MaxSize {
		return fmt.Errorf("%w: %q has size %d", ErrInvalidKind, k.Name, k.Size)
	}
	return nil
}

// Cell is a single grid location.
type Cell struct {
	Pos      Point
	Floor    *Floor
	Solid    bool
	Occupant *Occupant
}

// Supports reports whether the terrain of an empty cell can carry kind k.
// Occupancy is not considered.
func (c *Cell) Supports(k *Kind) bool {
	if c == nil || c.Solid || c.Floor == nil || !c.Floor.Placeable {
		return false
	}
	if k.RequiresWater && c.Floor.Liquid != LiquidWater {
		return false
	}
	if c.Floor.Deep && !k.Floating && !k.RequiresWater && !k.PlaceableLiquid {
		return false
	}
	return true
}

// Occupant is a placed building.
type Occupant struct {
	ID       uuid.UUID
	Name     string
	Kind     *Kind
	Team     Team
	Anchor   Point
	Rotation Direction
	Dead     bool
}

func (o *Occupant) Size() int {
	return o.Kind.Size
}

// Bounds returns the inclusive corners of the footprint anchored at anchor.
// Odd sizes are centred on the anchor; even sizes extend one further up and right.
func Bounds(size int, anchor Point) (lo, hi Point) {
	lo = Point{X: anchor.X - (size-1)/2, Y: anchor.Y - (size-1)/2}
	hi = Point{X: anchor.X + size/2, Y: anchor.Y + size/2}
	return lo, hi
}

// Footprint lists every cell point the occupant covers.
func (o *Occupant) Footprint() []Point {
	return footprint(o.Size(), o.Anchor)
}

func footprint(size int, anchor Point) []Point {
	lo, hi := Bounds(size, anchor)
	out := make([]Point, 0, size*size)
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			out = append(out, Point{X: x, Y: y})
		}
	}
	return out
}

// Label is the occupant name when set, otherwise its ID.
func (o *Occupant) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return o.ID.String()
}

func (o *Occupant) String() string {
	return fmt.Sprintf("%s[%s@%s]", o.Label(), o.Kind.Name, o.Anchor)
}
