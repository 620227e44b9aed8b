package grid

import "fmt"

// Direction is a cardinal push or facing direction in rotation order.
type Direction int

const (
	Right Direction = iota // +x
	Up                     // +y
	Left                   // -x
	Down                   // -y
)

var unitVectors = [4]Point{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
}

// Norm wraps any raw rotation value into [0, 4).
func (d Direction) Norm() Direction {
	n := int(d) % 4
	if n < 0 {
		n += 4
	}
	return Direction(n)
}

// Vector returns the unit step of the direction.
func (d Direction) Vector() Point {
	return unitVectors[d.Norm()]
}

// Rotate turns the direction by quarter turns, counter-clockwise for positive n.
func (d Direction) Rotate(n int) Direction {
	return Direction(int(d) + n).Norm()
}

func (d Direction) String() string {
	switch d.Norm() {
	case Right:
		return "right"
	case Up:
		return "up"
	case Left:
		return "left"
	default:
		return "down"
	}
}

// ParseDirection accepts a direction name or a rotation index.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "right", "r", "east", "0":
		return Right, nil
	case "up", "u", "north", "1":
		return Up, nil
	case "left", "l", "west", "2":
		return Left, nil
	case "down", "d", "south", "3":
		return Down, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
