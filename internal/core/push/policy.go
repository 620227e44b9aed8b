package push

import "fmt"

// LatePolicy decides what happens when the grid refuses an occupant's new
// position after the chain was validated.
type LatePolicy string

const (
	// LateRollback moves every occupant already pushed back to where it was
	// and fails the push.
	LateRollback LatePolicy = "rollback"
	// LateTolerate leaves the refused occupant in place, keeps pushing the rest
	// of the chain and reports success.
	LateTolerate LatePolicy = "tolerate"
)

func ParseLatePolicy(s string) (LatePolicy, error) {
	switch LatePolicy(s) {
	case "", LateRollback:
		return LateRollback, nil
	case LateTolerate:
		return LateTolerate, nil
	}
	return "", fmt.Errorf("unknown late placement policy %q", s)
}

func (lp *LatePolicy) UnmarshalText(text []byte) error {
	v, err := ParseLatePolicy(string(text))
	if err != nil {
		return err
	}
	*lp = v
	return nil
}
