package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/pushgrid/internal/config"
	"github.com/zeusync/pushgrid/internal/injector"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "pushsim",
		Short:        "Chained push simulator for multi-tile grid occupants",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	app := func() (*injector.App, func(), error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		return injector.InitializeApp(cfg)
	}

	root.AddCommand(runCmd(app))
	root.AddCommand(originsCmd(app))
	root.AddCommand(serveCmd(app))
	return root
}

type appFunc func() (*injector.App, func(), error)
