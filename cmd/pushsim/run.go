package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/pushgrid/internal/scenario"
)

var errMismatch = errors.New("scenario outcomes did not match expectations")

func runCmd(newApp appFunc) *cobra.Command {
	var (
		asJSON  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "run [scenario.yaml...]",
		Short: "Replay scenario files and report every push",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			files, err := loadScenarios(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = app.Config.Workers
			}

			reports, err := app.Runner.RunAll(cmd.Context(), files, workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err = enc.Encode(reports); err != nil {
					return err
				}
			} else {
				printReports(out, reports)
			}

			for _, rep := range reports {
				if rep.Failed() {
					return errMismatch
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print reports as JSON")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "scenarios run at once (default from config)")
	return cmd
}

func loadScenarios(paths []string) ([]*scenario.File, error) {
	files := make([]*scenario.File, 0, len(paths))
	for _, p := range paths {
		f, err := scenario.Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func printReports(out io.Writer, reports []*scenario.Report) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, rep := range reports {
		_, _ = fmt.Fprintf(tw, "== %s (fingerprint %016x)\n", rep.Name, rep.Fingerprint)
		for _, s := range rep.Steps {
			status := "ok"
			if !s.OK {
				status = s.Reason
			}
			mark := ""
			if s.Mismatch {
				mark = "MISMATCH"
			}
			_, _ = fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\n",
				s.Index, s.Occupant, s.Direction, status, strings.Join(s.Moved, ","), mark)
		}
		m := rep.Metrics
		_, _ = fmt.Fprintf(tw, "attempts=%d pushed=%d moved=%d late_rejected=%d\n",
			m.Attempts, m.Pushed, m.OccupantsMoved, m.LateRejected)
	}
	_ = tw.Flush()
}
