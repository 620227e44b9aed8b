package push

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/pushgrid/internal/core/grid"
	"github.com/zeusync/pushgrid/pkg/sequence"
)

// Filter is an extra acceptance rule applied to every occupant of a chain.
type Filter func(*grid.Occupant) bool

// AcceptAll is the Filter used by Push.
func AcceptAll(*grid.Occupant) bool { return true }

// Chain is a push chain ordered by ascending forward projection: the root
// first, the occupant farthest along the push direction last.
type Chain []*grid.Occupant

func (c Chain) Labels() []string {
	out := make([]string, len(c))
	for i, o := range c {
		out[i] = o.Label()
	}
	return out
}

// Resolve collects every occupant coupled ahead of root along d. Occupants are
// visited in order of their forward projection, so the returned chain is
// sorted. A single coupled occupant that is not displaceable or is refused by
// filter blocks the whole chain. Chains longer than max are refused.
func (p *Pusher) Resolve(root *grid.Occupant, d grid.Direction, max int, filter Filter) (Chain, error) {
	if filter == nil {
		filter = AcceptAll
	}
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrUnpushableRoot)
	}
	if !validSize(root) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSize, root)
	}
	if !Displaceable(root) || !filter(root) {
		return nil, fmt.Errorf("%w: %s", ErrUnpushableRoot, root)
	}
	d = d.Norm()

	frontier := sequence.NewPriorityQueue[*grid.Occupant]()
	seen := map[uuid.UUID]struct{}{root.ID: {}}
	frontier.Enqueue(root, p.table.Project(root, d))

	chain := make(Chain, 0, 4)
	for !frontier.IsEmpty() {
		next, _ := frontier.Dequeue()
		chain = append(chain, next)
		if len(chain) > max {
			return nil, fmt.Errorf("%w: more than %d occupants from %s", ErrChainTooLong, max, root)
		}

		for _, pt := range p.table.ForwardEdge(next, d) {
			c := p.grid.Cell(pt)
			if c == nil || c.Occupant == nil {
				continue
			}
			b := c.Occupant
			if _, ok := seen[b.ID]; ok {
				continue
			}
			if !Displaceable(b) || !validSize(b) || !filter(b) {
				return nil, fmt.Errorf("%w: %s ahead of %s", ErrCoupledBlock, b, next)
			}
			seen[b.ID] = struct{}{}
			frontier.Enqueue(b, p.table.Project(b, d))
		}
	}
	return chain, nil
}
