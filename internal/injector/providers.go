package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/pushgrid/internal/config"
	"github.com/zeusync/pushgrid/internal/core/events/bus"
	"github.com/zeusync/pushgrid/internal/core/observability/log"
	"github.com/zeusync/pushgrid/internal/core/push"
	"github.com/zeusync/pushgrid/internal/scenario"
	"github.com/zeusync/pushgrid/internal/server"
)

// App is the fully wired simulator.
type App struct {
	Config *config.Config
	Logger log.Log
	Table  *push.Table
	Bus    bus.EventBus
	Runner *scenario.Runner
	Feed   *server.Feed
	Server *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	push.NewTable,
	bus.New,
	ProvideRunner,
	server.NewFeed,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	l, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

func ProvideRunner(cfg *config.Config, table *push.Table, logger log.Log, b bus.EventBus) *scenario.Runner {
	return scenario.NewRunner(table, logger.Named("scenario"), b, cfg.Push)
}

// Snapshot is the body served at /metrics.
type Snapshot struct {
	Push push.Metrics        `json:"push"`
	Bus  bus.EventBusMetrics `json:"bus"`
}

func ProvideServer(cfg *config.Config, feed *server.Feed, runner *scenario.Runner, b bus.EventBus, logger log.Log) *server.Server {
	metrics := func() any {
		return Snapshot{Push: runner.Totals(), Bus: b.GetMetrics()}
	}
	return server.New(cfg.Server.ListenAddr, feed, metrics, logger.Named("server"))
}
