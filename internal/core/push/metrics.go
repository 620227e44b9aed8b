package push

import (
	"errors"
	"sync/atomic"
)

// Metrics is a snapshot of pusher counters.
type Metrics struct {
	Attempts        uint64 `json:"attempts"`
	Pushed          uint64 `json:"pushed"`
	OccupantsMoved  uint64 `json:"occupants_moved"`
	UnpushableRoot  uint64 `json:"unpushable_root"`
	CoupledBlock    uint64 `json:"coupled_block"`
	ChainTooLong    uint64 `json:"chain_too_long"`
	TerrainRejected uint64 `json:"terrain_rejected"`
	LateRejected    uint64 `json:"late_rejected"`
}

type counters struct {
	attempts        atomic.Uint64
	pushed          atomic.Uint64
	occupantsMoved  atomic.Uint64
	unpushableRoot  atomic.Uint64
	coupledBlock    atomic.Uint64
	chainTooLong    atomic.Uint64
	terrainRejected atomic.Uint64
	lateRejected    atomic.Uint64
}

func (c *counters) fail(err error) {
	switch {
	case errors.Is(err, ErrUnpushableRoot), errors.Is(err, ErrInvalidSize):
		c.unpushableRoot.Add(1)
	case errors.Is(err, ErrCoupledBlock):
		c.coupledBlock.Add(1)
	case errors.Is(err, ErrChainTooLong):
		c.chainTooLong.Add(1)
	case errors.Is(err, ErrTerrainRejected):
		c.terrainRejected.Add(1)
	}
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		Attempts:        c.attempts.Load(),
		Pushed:          c.pushed.Load(),
		OccupantsMoved:  c.occupantsMoved.Load(),
		UnpushableRoot:  c.unpushableRoot.Load(),
		CoupledBlock:    c.coupledBlock.Load(),
		ChainTooLong:    c.chainTooLong.Load(),
		TerrainRejected: c.terrainRejected.Load(),
		LateRejected:    c.lateRejected.Load(),
	}
}

// Add returns the field-wise sum of m and o.
func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		Attempts:        m.Attempts + o.Attempts,
		Pushed:          m.Pushed + o.Pushed,
		OccupantsMoved:  m.OccupantsMoved + o.OccupantsMoved,
		UnpushableRoot:  m.UnpushableRoot + o.UnpushableRoot,
		CoupledBlock:    m.CoupledBlock + o.CoupledBlock,
		ChainTooLong:    m.ChainTooLong + o.ChainTooLong,
		TerrainRejected: m.TerrainRejected + o.TerrainRejected,
		LateRejected:    m.LateRejected + o.LateRejected,
	}
}
