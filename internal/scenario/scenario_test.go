package scenario

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pushgrid/internal/config"
	"github.com/zeusync/pushgrid/internal/core/events/bus"
	"github.com/zeusync/pushgrid/internal/core/grid"
	"github.com/zeusync/pushgrid/internal/core/push"
)

func newRunner(b bus.EventBus) *Runner {
	return NewRunner(push.NewTable(nil), nil, b, config.Default().Push)
}

func TestLoadAndBuild(t *testing.T) {
	f, err := Load("testdata/harbor.yaml")
	require.NoError(t, err)
	assert.Equal(t, "harbor", f.Name)

	w, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"boat", "crate"}, w.Names())

	c := w.Grid.Cell(grid.P(5, 2))
	require.NotNil(t, c)
	assert.True(t, c.Solid)
	assert.Equal(t, "deep", w.Grid.Cell(grid.P(2, 2)).Floor.Name)
	assert.Equal(t, "sand", w.Grid.Cell(grid.P(2, 1)).Floor.Name)
	assert.Equal(t, "stone", w.Grid.Cell(grid.P(0, 0)).Floor.Name)
}

func TestRunTwoWalls(t *testing.T) {
	f, err := Load("testdata/two_walls.yaml")
	require.NoError(t, err)

	b := bus.New()
	var types []string
	_, _ = b.Subscribe(bus.Wildcard, func(e bus.Event) error {
		types = append(types, e.Type())
		return nil
	})

	rep, err := newRunner(b).Run(context.Background(), f)
	require.NoError(t, err)
	assert.False(t, rep.Failed())
	require.Len(t, rep.Steps, 4)

	assert.Equal(t, []string{"b", "a"}, rep.Steps[0].Moved)
	assert.Equal(t, "chain_too_long", rep.Steps[1].Reason)
	assert.Equal(t, "unpushable_root", rep.Steps[2].Reason)
	assert.True(t, rep.Steps[3].OK)

	assert.Equal(t, grid.P(1, 0), rep.Positions["a"])
	assert.Equal(t, grid.P(3, 1), rep.Positions["b"])
	assert.Equal(t, grid.P(7, 4), rep.Positions["core"])
	assert.Equal(t, uint64(1), rep.Metrics.Pushed)

	// single pushes do not publish
	assert.Equal(t, []string{push.EventMoved, push.EventBlocked, push.EventBlocked}, types)
}

func TestRunHarbor(t *testing.T) {
	f, err := Load("testdata/harbor.yaml")
	require.NoError(t, err)

	rep, err := newRunner(nil).Run(context.Background(), f)
	require.NoError(t, err)
	assert.False(t, rep.Failed())
	assert.Equal(t, grid.P(4, 1), rep.Positions["boat"])
	assert.Equal(t, grid.P(1, 2), rep.Positions["crate"])
	assert.Equal(t, "terrain_rejected", rep.Steps[0].Reason)
}

func TestRunFlagsMismatch(t *testing.T) {
	f, err := Decode(strings.NewReader(`
name: mismatch
width: 4
height: 1
kinds: {block: {size: 1}}
occupants: [{name: a, kind: block, x: 3, y: 0}]
pushes: [{occupant: a, direction: right, expect: true}]
`))
	require.NoError(t, err)
	rep, err := newRunner(nil).Run(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, rep.Failed())
	assert.True(t, rep.Steps[0].Mismatch)
}

func TestRunAllKeepsOrder(t *testing.T) {
	a, err := Load("testdata/two_walls.yaml")
	require.NoError(t, err)
	b, err := Load("testdata/harbor.yaml")
	require.NoError(t, err)

	r := newRunner(bus.New())
	reps, err := r.RunAll(context.Background(), []*File{a, b, a}, 2)
	require.NoError(t, err)
	require.Len(t, reps, 3)
	assert.Equal(t, "two-walls", reps[0].Name)
	assert.Equal(t, "harbor", reps[1].Name)
	assert.Equal(t, reps[0].Positions, reps[2].Positions)

	var want push.Metrics
	for _, rep := range reps {
		want = want.Add(rep.Metrics)
	}
	assert.Equal(t, want, r.Totals())
}

func TestRunCancelled(t *testing.T) {
	f, err := Load("testdata/two_walls.yaml")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newRunner(nil).Run(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildRejectsBadFiles(t *testing.T) {
	tests := map[string]string{
		"size":          "width: 0\nheight: 3\n",
		"unknown kind":  "width: 3\nheight: 3\noccupants: [{kind: ghost}]\n",
		"bad kind":      "width: 3\nheight: 3\nkinds: {huge: {size: 20}}\n",
		"overlap":       "width: 3\nheight: 3\nkinds: {b: {size: 1}}\noccupants: [{name: a, kind: b}, {name: c, kind: b}]\n",
		"duplicate":     "width: 3\nheight: 3\nkinds: {b: {size: 1}}\noccupants: [{name: a, kind: b}, {name: a, kind: b, x: 1}]\n",
		"rows":          "width: 2\nheight: 2\nterrain: {legend: {'.': {}}, rows: ['..']}\n",
		"row width":     "width: 2\nheight: 1\nterrain: {legend: {'.': {}}, rows: ['...']}\n",
		"legend":        "width: 2\nheight: 1\nterrain: {legend: {'.': {}}, rows: ['.x']}\n",
		"terrain floor": "width: 1\nheight: 1\nterrain: {legend: {'.': {floor: lava}}, rows: ['.']}\n",
		"base floor":    "width: 1\nheight: 1\nfloor: lava\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := Decode(strings.NewReader(doc))
			require.NoError(t, err)
			_, err = f.Build()
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestRunRejectsUnknownPushTarget(t *testing.T) {
	f, err := Decode(strings.NewReader("width: 2\nheight: 2\npushes: [{occupant: nobody, direction: up}]\n"))
	require.NoError(t, err)
	_, err = newRunner(nil).Run(context.Background(), f)
	assert.ErrorIs(t, err, ErrInvalidScenario)

	f, err = Decode(strings.NewReader("width: 2\nheight: 2\nkinds: {b: {size: 1}}\noccupants: [{name: a, kind: b}]\npushes: [{occupant: a, direction: sideways}]\n"))
	require.NoError(t, err)
	_, err = newRunner(nil).Run(context.Background(), f)
	assert.ErrorIs(t, err, ErrInvalidScenario)
}
