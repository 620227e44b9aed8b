package push

import (
	"github.com/zeusync/pushgrid/internal/core/events/bus"
	"github.com/zeusync/pushgrid/internal/core/observability/log"
)

const (
	EventMoved        = "push.moved"
	EventBlocked      = "push.blocked"
	EventLateRejected = "push.late_rejected"
)

// Outcome is the payload of every push event.
type Outcome struct {
	Root      string   `json:"root"`
	Direction string   `json:"direction"`
	Chain     []string `json:"chain,omitempty"`
	Moved     []string `json:"moved,omitempty"`
	Rejected  []string `json:"rejected,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (p *Pusher) publish(res Result, err error) {
	if p.bus == nil {
		return
	}
	out := Outcome{
		Direction: res.Direction.String(),
		Chain:     res.Chain.Labels(),
		Moved:     Chain(res.Moved).Labels(),
		Rejected:  Chain(res.Rejected).Labels(),
		Reason:    Reason(err),
	}
	if res.Root != nil {
		out.Root = res.Root.Label()
	}
	if err != nil {
		out.Error = err.Error()
	}

	typ := EventMoved
	switch {
	case len(res.Rejected) > 0:
		typ = EventLateRejected
	case err != nil:
		typ = EventBlocked
	}
	if perr := p.bus.Publish(bus.NewEvent(typ, p.source, out, nil)); perr != nil {
		p.logger.Warn("push event handler failed", log.String("event", typ), log.Error(perr))
	}
}
