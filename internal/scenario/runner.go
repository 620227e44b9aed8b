package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/zeusync/pushgrid/internal/config"
	"github.com/zeusync/pushgrid/internal/core/events/bus"
	"github.com/zeusync/pushgrid/internal/core/grid"
	"github.com/zeusync/pushgrid/internal/core/observability/log"
	"github.com/zeusync/pushgrid/internal/core/push"
	"github.com/zeusync/pushgrid/pkg/concurrent"
)

// Runner replays scenario files. Every scenario gets its own grid and pusher,
// so scenarios can run in parallel while each grid has a single mutator.
type Runner struct {
	table  *push.Table
	logger log.Log
	bus    bus.EventBus
	cfg    config.PushConfig

	mu     sync.Mutex
	totals push.Metrics
}

func NewRunner(table *push.Table, logger log.Log, b bus.EventBus, cfg config.PushConfig) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{table: table, logger: logger, bus: b, cfg: cfg}
}

type Step struct {
	Index     int      `json:"index"`
	Occupant  string   `json:"occupant"`
	Direction string   `json:"direction"`
	Single    bool     `json:"single,omitempty"`
	OK        bool     `json:"ok"`
	Reason    string   `json:"reason,omitempty"`
	Error     string   `json:"error,omitempty"`
	Moved     []string `json:"moved,omitempty"`
	Expected  *bool    `json:"expected,omitempty"`
	Mismatch  bool     `json:"mismatch,omitempty"`
}

type Report struct {
	Name        string                `json:"name"`
	Steps       []Step                `json:"steps"`
	Positions   map[string]grid.Point `json:"positions"`
	Fingerprint uint64                `json:"fingerprint"`
	Metrics     push.Metrics          `json:"metrics"`
}

// Failed reports whether any step contradicted its expectation.
func (r *Report) Failed() bool {
	for _, s := range r.Steps {
		if s.Mismatch {
			return true
		}
	}
	return false
}

func (r *Runner) Run(ctx context.Context, f *File) (*Report, error) {
	w, err := f.Build()
	if err != nil {
		return nil, err
	}
	logger := r.logger.With(log.String("scenario", f.Name))
	opts := []push.Option{
		push.WithLogger(logger),
		push.WithLatePolicy(r.cfg.LatePolicy),
		push.WithSource(f.Name),
	}
	if r.bus != nil {
		opts = append(opts, push.WithEventBus(r.bus))
	}
	p := push.New(w.Grid, r.table, opts...)

	rep := &Report{Name: f.Name, Steps: make([]Step, 0, len(f.Pushes))}
	for i, spec := range f.Pushes {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		o, ok := w.ByName[spec.Occupant]
		if !ok {
			return nil, fmt.Errorf("%w: push %d names unknown occupant %q", ErrInvalidScenario, i, spec.Occupant)
		}
		d, derr := grid.ParseDirection(spec.Direction)
		if derr != nil {
			return nil, fmt.Errorf("%w: push %d: %w", ErrInvalidScenario, i, derr)
		}

		step := Step{
			Index:     i,
			Occupant:  spec.Occupant,
			Direction: d.String(),
			Single:    spec.Single,
			Expected:  spec.Expect,
		}
		var pushErr error
		if spec.Single {
			pushErr = p.PushSingle(o, d)
			if pushErr == nil {
				step.Moved = []string{o.Label()}
			}
		} else {
			var res push.Result
			res, pushErr = p.Push(o, d, r.cfg.ChainBudget(spec.Max))
			step.Moved = push.Chain(res.Moved).Labels()
		}
		step.OK = pushErr == nil
		step.Reason = push.Reason(pushErr)
		if pushErr != nil {
			step.Error = pushErr.Error()
		}
		if spec.Expect != nil && *spec.Expect != step.OK {
			step.Mismatch = true
			logger.Warn("unexpected push outcome",
				log.Int("step", i),
				log.String("occupant", spec.Occupant),
				log.Bool("expected", *spec.Expect),
				log.String("reason", step.Reason),
			)
		}
		rep.Steps = append(rep.Steps, step)

		if err = w.Grid.Verify(); err != nil {
			return nil, fmt.Errorf("after push %d: %w", i, err)
		}
	}

	rep.Positions = make(map[string]grid.Point, len(w.ByName))
	for name, o := range w.ByName {
		rep.Positions[name] = o.Anchor
	}
	rep.Fingerprint = w.Grid.Fingerprint()
	rep.Metrics = p.Metrics()
	r.mu.Lock()
	r.totals = r.totals.Add(rep.Metrics)
	r.mu.Unlock()
	logger.Info("scenario finished",
		log.Int("pushes", len(rep.Steps)),
		log.Uint64("pushed", rep.Metrics.Pushed),
		log.Bool("failed", rep.Failed()),
	)
	return rep, nil
}

// Totals sums the pusher metrics of every completed run.
func (r *Runner) Totals() push.Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals
}

// RunAll runs files concurrently, at most workers at a time, and returns the
// reports in input order.
func (r *Runner) RunAll(ctx context.Context, files []*File, workers int) ([]*Report, error) {
	return concurrent.Map(ctx, files, workers, r.Run)
}
