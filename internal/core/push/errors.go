package push

import (
	"errors"
	"fmt"
)

// ErrBlocked is the parent of every chain resolution failure.
var ErrBlocked = errors.New("push blocked")

var (
	// Resolution errors

	ErrUnpushableRoot = fmt.Errorf("%w: root cannot be displaced", ErrBlocked)
	ErrCoupledBlock   = fmt.Errorf("%w: coupled occupant cannot be displaced", ErrBlocked)
	ErrChainTooLong   = fmt.Errorf("%w: chain exceeds budget", ErrBlocked)

	// Validation and execution errors

	ErrTerrainRejected = errors.New("forward terrain rejected")
	ErrLatePlacement   = errors.New("placement rejected during execution")

	ErrInvalidSize = errors.New("footprint size out of range")
)

// Reason names the failure class of err for events and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnpushableRoot):
		return "unpushable_root"
	case errors.Is(err, ErrCoupledBlock):
		return "coupled_block"
	case errors.Is(err, ErrChainTooLong):
		return "chain_too_long"
	case errors.Is(err, ErrTerrainRejected):
		return "terrain_rejected"
	case errors.Is(err, ErrLatePlacement):
		return "late_placement"
	case errors.Is(err, ErrInvalidSize):
		return "invalid_size"
	default:
		return "unknown"
	}
}
