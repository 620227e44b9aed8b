package push

import (
	"fmt"

	"github.com/zeusync/pushgrid/internal/core/events/bus"
	"github.com/zeusync/pushgrid/internal/core/grid"
	"github.com/zeusync/pushgrid/internal/core/observability/log"
)

// Grid is the world the pusher reads and mutates. Remove and Place must only
// be called from the goroutine that owns the grid.
type Grid interface {
	// Cell returns nil outside the grid.
	Cell(p grid.Point) *grid.Cell
	// CanPlaceOn is the kind's own rule for its anchor cell.
	CanPlaceOn(k *grid.Kind, c *grid.Cell, team grid.Team) bool
	// ValidPlace reports whether a new occupant of kind k fits at anchor now.
	ValidPlace(k *grid.Kind, team grid.Team, anchor grid.Point) bool
	Remove(o *grid.Occupant) error
	Place(o *grid.Occupant, anchor grid.Point) error
	// Restore puts a removed occupant back without terrain checks. It must
	// succeed whenever the footprint cells are free.
	Restore(o *grid.Occupant, anchor grid.Point) error
}

var _ Grid = (*grid.Grid)(nil)

// Pusher resolves and executes chained pushes on one grid.
type Pusher struct {
	grid    Grid
	table   *Table
	logger  log.Log
	bus     bus.EventBus
	policy  LatePolicy
	source  string
	metrics counters
}

type Option func(*Pusher)

func WithLogger(l log.Log) Option {
	return func(p *Pusher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithEventBus publishes one event per Push call on b.
func WithEventBus(b bus.EventBus) Option {
	return func(p *Pusher) { p.bus = b }
}

func WithLatePolicy(lp LatePolicy) Option {
	return func(p *Pusher) { p.policy = lp }
}

// WithSource sets the source reported on published events.
func WithSource(src string) Option {
	return func(p *Pusher) { p.source = src }
}

func New(g Grid, table *Table, opts ...Option) *Pusher {
	p := &Pusher{
		grid:   g,
		table:  table,
		logger: log.NewNop(),
		policy: LateRollback,
		source: "pusher",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pusher) Table() *Table { return p.table }

func (p *Pusher) Policy() LatePolicy { return p.policy }

func (p *Pusher) Metrics() Metrics { return p.metrics.snapshot() }

// Result describes what a Push call did.
type Result struct {
	Root      *grid.Occupant
	Direction grid.Direction
	Chain     Chain
	// Moved lists occupants that ended on their advanced anchor, in move order.
	Moved []*grid.Occupant
	// Rejected lists occupants the grid refused to advance during execution.
	Rejected []*grid.Occupant
}

// Push moves root and every occupant coupled ahead of it one cell in d. The
// chain is resolved and validated before anything moves; on any failure up to
// that point the grid is left untouched. Occupants are moved farthest first.
func (p *Pusher) Push(root *grid.Occupant, d grid.Direction, max int) (Result, error) {
	d = d.Norm()
	p.metrics.attempts.Add(1)
	res := Result{Root: root, Direction: d}

	chain, err := p.Resolve(root, d, max, AcceptAll)
	if err != nil {
		return p.fail(res, err)
	}
	res.Chain = chain

	for i := len(chain) - 1; i >= 0; i-- {
		if !p.CanPush(chain[i], d) {
			return p.fail(res, fmt.Errorf("%w: %s cannot advance %s", ErrTerrainRejected, chain[i], d))
		}
	}

	type step struct {
		o    *grid.Occupant
		from grid.Point
	}
	done := make([]step, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		o := chain[i]
		from := o.Anchor
		if err = p.moveOne(o, d); err != nil {
			res.Rejected = append(res.Rejected, o)
			p.metrics.lateRejected.Add(1)
			if p.policy == LateTolerate {
				p.logger.Warn("occupant kept in place",
					log.Stringer("occupant", o),
					log.Stringer("direction", d),
					log.Error(err),
				)
				continue
			}
			for j := len(done) - 1; j >= 0; j-- {
				p.relocate(done[j].o, done[j].from)
			}
			res.Moved = nil
			p.logger.Warn("push rolled back",
				log.Stringer("root", root),
				log.Int("undone", len(done)),
				log.Error(err),
			)
			p.publish(res, err)
			return res, err
		}
		done = append(done, step{o: o, from: from})
		res.Moved = append(res.Moved, o)
	}

	p.metrics.pushed.Add(1)
	p.metrics.occupantsMoved.Add(uint64(len(res.Moved)))
	p.logger.Debug("chain pushed",
		log.Stringer("root", root),
		log.Stringer("direction", d),
		log.Int("chain", len(chain)),
		log.Int("rejected", len(res.Rejected)),
	)
	p.publish(res, nil)
	return res, nil
}

// TryPush is Push reduced to whether it succeeded.
func (p *Pusher) TryPush(root *grid.Occupant, d grid.Direction, max int) bool {
	_, err := p.Push(root, d, max)
	return err == nil
}

// PushSingle moves o one cell in d without touching anything in its way. If
// the grid refuses the new position, o is put back.
func (p *Pusher) PushSingle(o *grid.Occupant, d grid.Direction) error {
	if !Displaceable(o) {
		return fmt.Errorf("%w: %s", ErrUnpushableRoot, o)
	}
	if !validSize(o) {
		return fmt.Errorf("%w: %s", ErrInvalidSize, o)
	}
	return p.moveOne(o, d.Norm())
}

func (p *Pusher) fail(res Result, err error) (Result, error) {
	p.metrics.fail(err)
	p.logger.Debug("push refused",
		log.String("reason", Reason(err)),
		log.Error(err),
	)
	p.publish(res, err)
	return res, err
}

// moveOne is the single occupant relocation. Exactly one occupant is off the
// grid at a time, and it always ends up placed again.
func (p *Pusher) moveOne(o *grid.Occupant, d grid.Direction) error {
	from := o.Anchor
	to := from.Step(d)
	if err := p.grid.Remove(o); err != nil {
		return fmt.Errorf("%w: %w", ErrLatePlacement, err)
	}
	if !p.grid.ValidPlace(o.Kind, o.Team, to) {
		p.restore(o, from)
		return fmt.Errorf("%w: %s to %s", ErrLatePlacement, o, to)
	}
	if err := p.grid.Place(o, to); err != nil {
		p.restore(o, from)
		return fmt.Errorf("%w: %w", ErrLatePlacement, err)
	}
	return nil
}

// relocate moves an already pushed occupant back to from. The cells at from
// were vacated by o itself, so terrain is not consulted.
func (p *Pusher) relocate(o *grid.Occupant, from grid.Point) {
	at := o.Anchor
	if err := p.grid.Remove(o); err != nil {
		p.logger.Error("rollback skipped", log.Stringer("occupant", o), log.Error(err))
		return
	}
	if err := p.grid.Restore(o, from); err != nil {
		p.logger.Error("rollback refused, occupant stays advanced",
			log.Stringer("occupant", o),
			log.Error(err),
		)
		p.restore(o, at)
	}
}

func (p *Pusher) restore(o *grid.Occupant, at grid.Point) {
	if err := p.grid.Restore(o, at); err != nil {
		p.logger.Error("occupant could not be restored",
			log.Stringer("occupant", o),
			log.Stringer("anchor", at),
			log.Error(err),
		)
	}
}
