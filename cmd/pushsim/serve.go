package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/pushgrid/internal/core/observability/log"
	"github.com/zeusync/pushgrid/internal/injector"
	"github.com/zeusync/pushgrid/internal/scenario"
)

func serveCmd(newApp appFunc) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [scenario.yaml...]",
		Short: "Replay scenarios on a timer and stream push events over websocket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()
			if addr != "" {
				app.Config.Server.ListenAddr = addr
				app.Server = injector.ProvideServer(app.Config, app.Feed, app.Runner, app.Bus, app.Logger)
			}

			files, err := loadScenarios(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub, err := app.Feed.Attach(app.Bus)
			if err != nil {
				return err
			}
			defer func() { _ = sub.Cancel() }()

			if err = app.Server.Start(); err != nil {
				return err
			}

			replay(ctx, app, files)
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.Server.Stop(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	return cmd
}

// replay runs one scenario per tick until ctx is done, or until every file ran
// once when looping is disabled.
func replay(ctx context.Context, app *injector.App, files []*scenario.File) {
	ticker := time.NewTicker(app.Config.Server.Tick)
	defer ticker.Stop()

	for i := 0; ; i++ {
		if i == len(files) {
			if !app.Config.Server.Loop {
				app.Logger.Info("replay finished, still serving")
				return
			}
			i = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if _, err := app.Runner.Run(ctx, files[i]); err != nil && ctx.Err() == nil {
			app.Logger.Error("scenario failed", log.String("scenario", files[i].Name), log.Error(err))
		}
	}
}
