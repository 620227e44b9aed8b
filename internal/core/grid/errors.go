package grid

import "errors"

var (
	ErrOutOfBounds      = errors.New("point out of bounds")
	ErrOccupied         = errors.New("cell is occupied")
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrUnknownOccupant  = errors.New("unknown occupant")
	ErrCorruptFootprint = errors.New("footprint does not match occupant")
)
